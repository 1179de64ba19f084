package ron

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Vec2 struct {
	X float32
	Y float32
}

type Wheel struct {
	Sprite   string
	Position Vec2
	CanTurn  bool
}

type Car struct {
	Speed      float64
	Name       string
	BodySprite string
	Wheels     []Wheel
	Spare      *Wheel
}

func TestUnmarshalStruct(t *testing.T) {
	src := `
// comment
Car(
    speed: 10.0,
    name: "car",
    body_sprite: "sprites/car.png",
    wheels: [(sprite: "sprites/Wheel.png", position: (0,0), can_turn: true)],
    spare: None,
)`
	var c Car
	require.NoError(t, Unmarshal([]byte(src), &c))

	assert.Equal(t, 10.0, c.Speed)
	assert.Equal(t, "car", c.Name)
	assert.Equal(t, "sprites/car.png", c.BodySprite)
	require.Len(t, c.Wheels, 1)
	assert.Equal(t, Wheel{Sprite: "sprites/Wheel.png", Position: Vec2{0, 0}, CanTurn: true}, c.Wheels[0])
	assert.Nil(t, c.Spare)
}

func TestUnmarshalOption(t *testing.T) {
	t.Run("some", func(t *testing.T) {
		var c Car
		require.NoError(t, Unmarshal([]byte(`(spare: Some((sprite: "s.png", position: (1, 2.5))))`), &c))
		require.NotNil(t, c.Spare)
		assert.Equal(t, Vec2{1, 2.5}, c.Spare.Position)
	})

	t.Run("bare value without implicit_some", func(t *testing.T) {
		var c Car
		err := Unmarshal([]byte(`(spare: (sprite: "s.png"))`), &c)
		var ronErr *Error
		require.ErrorAs(t, err, &ronErr)
		assert.Contains(t, ronErr.Msg, "expected option")
	})

	t.Run("implicit_some", func(t *testing.T) {
		var c Car
		src := "#![enable(implicit_some)]\n(spare: (sprite: \"s.png\"))"
		require.NoError(t, Unmarshal([]byte(src), &c))
		require.NotNil(t, c.Spare)
		assert.Equal(t, "s.png", c.Spare.Sprite)
	})
}

func TestUnmarshalScalars(t *testing.T) {
	var v struct {
		Hex    int
		Bin    uint8
		Oct    int
		Under  int64
		Neg    int
		Float  float32
		Exp    float64
		Inf    float64
		NegInf float64
		Nan    float64
		Char   rune
		Str    string
		Raw    string
		Esc    string
		Enum   string
	}
	src := `(
		hex: 0xff,
		bin: 0b101,
		oct: 0o17,
		under: 1_000_000,
		neg: -42,
		float: 1.5,
		exp: 2e3,
		inf: inf,
		neg_inf: -inf,
		nan: NaN,
		char: 'x',
		str: "a\tb\u{1F600}",
		raw: r#"say "hi""#,
		esc: "quote\"back\\slash\n",
		enum: Sedan,
	)`
	require.NoError(t, Unmarshal([]byte(src), &v))

	assert.Equal(t, 255, v.Hex)
	assert.Equal(t, uint8(5), v.Bin)
	assert.Equal(t, 15, v.Oct)
	assert.Equal(t, int64(1000000), v.Under)
	assert.Equal(t, -42, v.Neg)
	assert.Equal(t, float32(1.5), v.Float)
	assert.Equal(t, 2000.0, v.Exp)
	assert.True(t, math.IsInf(v.Inf, 1))
	assert.True(t, math.IsInf(v.NegInf, -1))
	assert.True(t, math.IsNaN(v.Nan))
	assert.Equal(t, 'x', v.Char)
	assert.Equal(t, "a\tb😀", v.Str)
	assert.Equal(t, `say "hi"`, v.Raw)
	assert.Equal(t, "quote\"back\\slash\n", v.Esc)
	assert.Equal(t, "Sedan", v.Enum)
}

func TestUnmarshalCollections(t *testing.T) {
	var v struct {
		Tags   []string
		Scores map[string]int
		ByID   map[int]string
		Pair   [2]int
		Any    interface{}
	}
	src := `(
		tags: ["a", "b",],
		scores: {"x": 1, "y": 2},
		by_id: {1: "one", 2: "two"},
		pair: (3, 4),
		any: {"k": [1, 2.5, true, None]},
	)`
	require.NoError(t, Unmarshal([]byte(src), &v))

	assert.Equal(t, []string{"a", "b"}, v.Tags)
	assert.Equal(t, map[string]int{"x": 1, "y": 2}, v.Scores)
	assert.Equal(t, map[int]string{1: "one", 2: "two"}, v.ByID)
	assert.Equal(t, [2]int{3, 4}, v.Pair)
	assert.Equal(t, map[string]any{"k": []any{int64(1), 2.5, true, nil}}, v.Any)
}

func TestUnmarshalTags(t *testing.T) {
	type embedded struct {
		Inner int
	}
	var v struct {
		embedded
		Renamed string `ron:"other"`
		Skipped string `ron:"-"`
	}
	require.NoError(t, Unmarshal([]byte(`(inner: 7, other: "x", skipped: "ignored")`), &v))
	assert.Equal(t, 7, v.Inner)
	assert.Equal(t, "x", v.Renamed)
	assert.Empty(t, v.Skipped)
}

func TestUnmarshalNestedComments(t *testing.T) {
	var v struct{ A int }
	require.NoError(t, Unmarshal([]byte("/* outer /* inner */ still comment */ (a: 1) // trailing"), &v))
	assert.Equal(t, 1, v.A)
}

func TestUnmarshalErrors(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		line   int
		column int
		msg    string
	}{
		{name: "missing comma", src: "(\n  speed: 1.0\n  name: \"x\")", line: 3, column: 3, msg: "expected ')'"},
		{name: "type mismatch", src: `(speed: "fast")`, line: 1, column: 9, msg: "expected float"},
		{name: "unterminated string", src: `(name: "car)`, line: 1, column: 8, msg: "unterminated string"},
		{name: "trailing input", src: `(name: "car") (`, line: 1, column: 15, msg: "trailing characters"},
		{name: "duplicate field", src: `(name: "a", name: "b")`, line: 1, column: 13, msg: "duplicate field"},
		{name: "wrong kind", src: `(wheels: [(position: (0, 0), can_turn: 3)])`, line: 1, column: 40, msg: "expected bool"},
		{name: "unknown char", src: `(name: @)`, line: 1, column: 8, msg: "unexpected character"},
		{name: "nesting too deep", src: strings.Repeat("[", 200), line: 1, column: 129, msg: "exceeded recursion limit"},
		{name: "unit into struct with fields", src: `()`, line: 1, column: 1, msg: "expected struct, found unit"},
		{name: "identifier into struct with fields", src: `Car`, line: 1, column: 1, msg: "expected struct, found identifier"},
		{name: "mismatched struct name", src: `Truck(speed: 1.0)`, line: 1, column: 1, msg: "expected struct `Car`, found `Truck`"},
		{name: "mismatched tuple struct name", src: `(spare: Some(Tire("s.png")))`, line: 1, column: 14, msg: "expected struct `Wheel`, found `Tire`"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Car
			err := Unmarshal([]byte(tt.src), &c)
			var ronErr *Error
			require.ErrorAs(t, err, &ronErr)
			assert.Equal(t, tt.line, ronErr.Pos.Line)
			assert.Equal(t, tt.column, ronErr.Pos.Column)
			assert.Contains(t, ronErr.Msg, tt.msg)
		})
	}
}

func TestUnmarshalStructNames(t *testing.T) {
	type marker struct{}

	t.Run("unit struct without fields", func(t *testing.T) {
		var m marker
		require.NoError(t, Unmarshal([]byte(`()`), &m))
		require.NoError(t, Unmarshal([]byte(`marker`), &m))
	})

	t.Run("anonymous struct accepts any name", func(t *testing.T) {
		var v struct{ Speed float64 }
		require.NoError(t, Unmarshal([]byte(`Truck(speed: 2.5)`), &v))
		assert.Equal(t, 2.5, v.Speed)
	})

	t.Run("unnamed and matching names", func(t *testing.T) {
		var a, b Car
		require.NoError(t, Unmarshal([]byte(`(speed: 1.0)`), &a))
		require.NoError(t, Unmarshal([]byte(`Car(speed: 1.0)`), &b))
		assert.Equal(t, a, b)
	})

	t.Run("nesting at the limit", func(t *testing.T) {
		src := strings.Repeat("[", maxDepth) + strings.Repeat("]", maxDepth)
		var v any
		require.NoError(t, Unmarshal([]byte(src), &v))
	})

	t.Run("deep input fails without exhausting the stack", func(t *testing.T) {
		src := strings.Repeat("[", 1<<20)
		var v any
		err := Unmarshal([]byte(src), &v)
		var ronErr *Error
		require.ErrorAs(t, err, &ronErr)
		assert.Contains(t, ronErr.Msg, "exceeded recursion limit")
	})
}

func TestUnmarshalIntRange(t *testing.T) {
	var v struct{ Small int8 }
	err := Unmarshal([]byte(`(small: 300)`), &v)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")
}

func TestDecoderDisallowUnknownFields(t *testing.T) {
	src := `(name: "car", color: "red")`

	var lenient Car
	require.NoError(t, NewDecoder(strings.NewReader(src)).Decode(&lenient))
	assert.Equal(t, "car", lenient.Name)

	dec := NewDecoder(strings.NewReader(src))
	dec.DisallowUnknownFields()
	var strict Car
	err := dec.Decode(&strict)
	var ronErr *Error
	require.ErrorAs(t, err, &ronErr)
	assert.Equal(t, 15, ronErr.Pos.Column)
	assert.Contains(t, ronErr.Msg, "unknown field `color`")
}

func TestUnmarshalNonPointer(t *testing.T) {
	var c Car
	assert.Error(t, Unmarshal([]byte(`()`), c))
}

func TestSnakeCase(t *testing.T) {
	for in, want := range map[string]string{
		"BodySprite": "body_sprite",
		"CanTurn":    "can_turn",
		"ID":         "id",
		"HTTPPort":   "http_port",
		"Speed":      "speed",
		"lower":      "lower",
	} {
		assert.Equal(t, want, SnakeCase(in), in)
	}
}
