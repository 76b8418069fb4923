package nbt

import "github.com/delaneyj/toolbelt"

var (
	tagSlicePool = toolbelt.New(func() []Tag { return make([]Tag, 0, 16) })
	keySlicePool = toolbelt.New(func() []string { return make([]string, 0, 8) })
)

func getTagSlice() []Tag {
	return tagSlicePool.Get()[:0]
}

func putTagSlice(s []Tag) {
	if s == nil || cap(s) > 1<<16 {
		return
	}
	clear(s)
	s = s[:0]
	tagSlicePool.Put(s)
}

func getKeySlice() []string {
	return keySlicePool.Get()[:0]
}

func putKeySlice(s []string) {
	if s == nil || cap(s) > 1<<16 {
		return
	}
	clear(s)
	s = s[:0]
	keySlicePool.Put(s)
}
