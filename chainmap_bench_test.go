package chainmap

import (
	"strconv"
	"testing"
)

var benchData [128 << 4]string

func init() {
	for i := range benchData {
		benchData[i] = strconv.Itoa(i)
	}
}

func BenchmarkHashMapInsert(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		var m HashMap[string, int]
		for j := range benchData {
			m.Insert(benchData[j], j)
		}
	}
}

func BenchmarkHashMapLoad(b *testing.B) {
	b.ReportAllocs()
	var m HashMap[string, int]
	for j := range benchData {
		m.Insert(benchData[j], j)
	}
	b.ResetTimer()
	i := 0
	for n := 0; n < b.N; n++ {
		_, _ = m.Load(benchData[i])
		i++
		if i >= len(benchData) {
			i = 0
		}
	}
}

func BenchmarkHashMapIterate(b *testing.B) {
	b.ReportAllocs()
	var m HashMap[string, int]
	for j := range benchData {
		m.Insert(benchData[j], j)
	}
	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		for it := m.Begin(); it != m.End(); it.Next() {
			_ = it.Key()
		}
	}
}

func BenchmarkHashMapEraseInsert(b *testing.B) {
	b.ReportAllocs()
	var m HashMap[string, int]
	for j := range benchData {
		m.Insert(benchData[j], j)
	}
	b.ResetTimer()
	i := 0
	for n := 0; n < b.N; n++ {
		m.Erase(benchData[i])
		m.Insert(benchData[i], i)
		i++
		if i >= len(benchData) {
			i = 0
		}
	}
}
