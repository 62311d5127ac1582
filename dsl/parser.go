package dsl

import (
	"fmt"
	"io"
	"strconv"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// 行覆盖 DSL：每条规则以段落序号（从 0 开始）开头，后跟若干属性。
//
//	0: bold size=lg color=#FFD700
//	2: font=go-mono no-underline; 3: italic
//
// 规则之间用换行或分号分隔，// 开头为注释。

var (
	overrideLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Whitespace", Pattern: `[ \t\r]+`},
		{Name: "Newline", Pattern: `\n+`},
		{Name: "LineComment", Pattern: `//[^\n]*`},
		{Name: "Color", Pattern: `#(?:[0-9A-Fa-f]{8}|[0-9A-Fa-f]{6}|[0-9A-Fa-f]{3})`},
		{Name: "Number", Pattern: `\d+(?:\.\d+)?`},
		{Name: "String", Pattern: `"(?:\\.|[^"])*"`},
		{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_-]*`},
		{Name: "Symbol", Pattern: `[:;=]`},
	})

	documentParser = participle.MustBuild[Document](
		participle.Lexer(overrideLexer),
		participle.Elide("Whitespace", "LineComment"),
	)
)

// Document is the root AST node of an override script.
type Document struct {
	Rules []*Rule `parser:"( Newline | ';' )* ( @@ ( Newline | ';' )* )*"`
}

// Rule 是一条针对单个段落的覆盖。
type Rule struct {
	Pos   lexer.Position `parser:"" json:"-"`
	Line  int            `parser:"@Number ':'"`
	Props []*Prop        `parser:"@@*"`
}

// Prop 是 key 或 key=value 形式的属性；无值的 key 表示开关打开。
type Prop struct {
	Pos   lexer.Position `parser:"" json:"-"`
	Key   string         `parser:"@Ident"`
	Value *Value         `parser:"( '=' @@ )?"`
}

// Value 保存属性值的原始文本。
type Value struct {
	Color  *string        `parser:"  @Color"`
	String *StringLiteral `parser:"| @String"`
	Word   *string        `parser:"| @Ident"`
	Number *string        `parser:"| @Number"`
}

// Text returns the value as plain text.
func (v *Value) Text() string {
	switch {
	case v == nil:
		return ""
	case v.Color != nil:
		return *v.Color
	case v.String != nil:
		return string(*v.String)
	case v.Word != nil:
		return *v.Word
	case v.Number != nil:
		return *v.Number
	default:
		return ""
	}
}

// StringLiteral unquotes Go-style strings on capture.
type StringLiteral string

// Capture implements participle.Capture.
func (s *StringLiteral) Capture(values []string) error {
	if len(values) == 0 {
		return fmt.Errorf("string literal capture requires value")
	}
	val, err := strconv.Unquote(values[0])
	if err != nil {
		return err
	}
	*s = StringLiteral(val)
	return nil
}

// Parse parses an override script from an io.Reader.
func Parse(r io.Reader) (*Document, error) {
	return documentParser.Parse("", r)
}

// ParseString parses an override script from a string.
func ParseString(input string) (*Document, error) {
	return documentParser.ParseString("", input)
}
