package anim

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"model-asset-preview/internal/logging"
	"model-asset-preview/internal/mathutil"
)

// Set maps animation names to parsed animations.
type Set map[string]*Animation

// Animation is one Bedrock animation clip.
type Animation struct {
	Name   string
	Loop   bool
	Hold   bool // hold_on_last_frame
	Length float64
	Bones  map[string]*Track
}

// Track holds the channels animating one bone. Absent channels are nil.
type Track struct {
	Rotation Channel
	Position Channel
	Scale    Channel
}

// Keyframe is a channel value at a point in time (seconds).
type Keyframe struct {
	Time  float64
	Value mathutil.Vec3
}

// Channel is a list of keyframes sorted by time.
type Channel []Keyframe

// Load reads an animation file.
func Load(path string) (Set, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("anim: read %s: %w", path, err)
	}
	set, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("anim: parse %s: %w", path, err)
	}
	return set, nil
}

type fileJSON struct {
	Animations map[string]animJSON `json:"animations"`
}

type animJSON struct {
	Loop   json.RawMessage                       `json:"loop"`
	Length float64                               `json:"animation_length"`
	Bones  map[string]map[string]json.RawMessage `json:"bones"`
}

// Parse decodes the "animations" object of an animation file. Molang
// expressions are not evaluated: string values that are not plain numbers
// read as zero.
func Parse(data []byte) (Set, error) {
	var f fileJSON
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, err
	}

	set := make(Set, len(f.Animations))
	for name, aj := range f.Animations {
		a := &Animation{Name: name, Length: aj.Length, Bones: make(map[string]*Track)}
		switch strings.TrimSpace(string(aj.Loop)) {
		case "true":
			a.Loop = true
		case `"hold_on_last_frame"`:
			a.Hold = true
		}

		for bone, channels := range aj.Bones {
			tr := &Track{}
			for kind, raw := range channels {
				ch, err := parseChannel(raw)
				if err != nil {
					return nil, fmt.Errorf("%s: %s.%s: %w", name, bone, kind, err)
				}
				switch kind {
				case "rotation":
					tr.Rotation = ch
				case "position":
					tr.Position = ch
				case "scale":
					tr.Scale = ch
				}
			}
			a.Bones[strings.ToLower(bone)] = tr
		}

		if a.Length <= 0 {
			a.Length = a.lastKeyTime()
		}
		set[name] = a
	}
	return set, nil
}

func (a *Animation) lastKeyTime() float64 {
	var last float64
	for _, tr := range a.Bones {
		for _, ch := range []Channel{tr.Rotation, tr.Position, tr.Scale} {
			if n := len(ch); n > 0 && ch[n-1].Time > last {
				last = ch[n-1].Time
			}
		}
	}
	return last
}

// Names returns the animation names in sorted order.
func (s Set) Names() []string {
	names := make([]string, 0, len(s))
	for n := range s {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func parseChannel(raw json.RawMessage) (Channel, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, nil
	}

	// Constant value: a number, a string or a vector.
	if raw[0] != '{' {
		v, err := parseVec(raw)
		if err != nil {
			return nil, err
		}
		return Channel{{Time: 0, Value: v}}, nil
	}

	var keys map[string]json.RawMessage
	if err := json.Unmarshal(raw, &keys); err != nil {
		return nil, err
	}

	ch := make(Channel, 0, len(keys))
	for ts, kv := range keys {
		t, err := strconv.ParseFloat(strings.TrimSpace(ts), 64)
		if err != nil {
			return nil, fmt.Errorf("keyframe time %q: %w", ts, err)
		}
		v, err := parseKeyValue(kv)
		if err != nil {
			return nil, fmt.Errorf("keyframe %s: %w", ts, err)
		}
		ch = append(ch, Keyframe{Time: t, Value: v})
	}
	sort.Slice(ch, func(i, j int) bool { return ch[i].Time < ch[j].Time })
	return ch, nil
}

// parseKeyValue accepts a plain vector or a {"pre": ..., "post": ...} object,
// preferring post.
func parseKeyValue(raw json.RawMessage) (mathutil.Vec3, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '{' {
		var pp struct {
			Pre  json.RawMessage `json:"pre"`
			Post json.RawMessage `json:"post"`
		}
		if err := json.Unmarshal(raw, &pp); err != nil {
			return mathutil.Vec3{}, err
		}
		if len(pp.Post) > 0 {
			return parseVec(pp.Post)
		}
		return parseVec(pp.Pre)
	}
	return parseVec(raw)
}

func parseVec(raw json.RawMessage) (mathutil.Vec3, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return mathutil.Vec3{}, nil
	}

	if raw[0] != '[' {
		s, err := parseScalar(raw)
		return mathutil.Vec3{s, s, s}, err
	}

	var parts []json.RawMessage
	if err := json.Unmarshal(raw, &parts); err != nil {
		return mathutil.Vec3{}, err
	}
	var v mathutil.Vec3
	for i := 0; i < len(parts) && i < 3; i++ {
		s, err := parseScalar(parts[i])
		if err != nil {
			return mathutil.Vec3{}, err
		}
		v[i] = s
	}
	return v, nil
}

// parseScalar reads a number or a numeric string. Other strings are Molang
// expressions, which are not evaluated: they read as 0 and are logged at
// debug level.
func parseScalar(raw json.RawMessage) (float64, error) {
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, fmt.Errorf("value %s: %w", raw, err)
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		logging.Logger().Debug("anim: expression read as 0", "expr", s)
		return 0, nil
	}
	return f, nil
}

// Sample evaluates the channel at time t with linear interpolation, holding
// the first and last keyframes outside their range.
func (c Channel) Sample(t float64) (mathutil.Vec3, bool) {
	if len(c) == 0 {
		return mathutil.Vec3{}, false
	}
	if t <= c[0].Time {
		return c[0].Value, true
	}
	last := c[len(c)-1]
	if t >= last.Time {
		return last.Value, true
	}

	i := sort.Search(len(c), func(i int) bool { return c[i].Time > t })
	a, b := c[i-1], c[i]
	span := b.Time - a.Time
	if span <= 0 {
		return b.Value, true
	}
	return a.Value.Lerp(b.Value, (t-a.Time)/span), true
}
