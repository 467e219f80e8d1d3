package main

import (
	"os"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// saveStats adds one run to the stats file, keeping any other keys in it.
func saveStats(path string, r RunResult) error {
	data, err := os.ReadFile(path)
	if err != nil || !gjson.ValidBytes(data) {
		data = []byte("{}")
	}
	add := func(p string, n int64) {
		data, _ = sjson.SetBytes(data, p, gjson.GetBytes(data, p).Int()+n)
	}
	add("runs", 1)
	add("frames.animation", int64(r.AnimationFrames))
	add("frames.physics", int64(r.PhysicsFrames))
	add("modeSwitches", int64(r.ModeSwitches))

	base := "layouts." + escapePath(r.Layout)
	add(base+".runs", 1)
	data, _ = sjson.SetBytes(data, base+".lastRoot", r.Root[:])
	data, _ = sjson.SetBytes(data, base+".lastMoving", r.Moving)
	return os.WriteFile(path, data, 0o644)
}

// escapePath quotes the characters gjson and sjson read as path syntax.
func escapePath(s string) string {
	var out []rune
	for _, c := range s {
		switch c {
		case '.', '*', '?', '|', '#', '@', '\\', '!', '=', '<', '>', '%':
			out = append(out, '\\')
		}
		out = append(out, c)
	}
	return string(out)
}
