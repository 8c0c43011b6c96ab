// Package sqlsplit splits a SQL script into its top-level statements without
// interpreting them. Semicolons inside comments, string literals, quoted
// identifiers and $$-quoted bodies do not terminate a statement.
package sqlsplit

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
)

var scriptLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `--[^\r\n]*|/\*[\s\S]*?\*/`},
	{Name: "DollarBody", Pattern: `\$\$[\s\S]*?\$\$`},
	{Name: "String", Pattern: `'(?:[^']|'')*'`},
	{Name: "QuotedIdent", Pattern: `"(?:[^"]|"")*"`},
	{Name: "Semi", Pattern: `;`},
	{Name: "Text", Pattern: `[^;'"$/-]+`},
	{Name: "Punct", Pattern: `[-/$]`},
})

var symbols = scriptLexer.Symbols()

// Split returns the non-empty statements of the script in order, with
// surrounding whitespace trimmed and the terminating semicolons removed.
// Statements that contain only comments are dropped.
func Split(script string) ([]string, error) {
	lx, err := scriptLexer.LexString("", script)
	if err != nil {
		return nil, fmt.Errorf("lex script: %w", err)
	}

	var (
		stmts   []string
		current strings.Builder
		bare    bool // current statement has tokens besides comments
	)

	flush := func() {
		if bare {
			if s := strings.TrimSpace(current.String()); s != "" {
				stmts = append(stmts, s)
			}
		}
		current.Reset()
		bare = false
	}

	for {
		tok, err := lx.Next()
		if err != nil {
			return nil, fmt.Errorf("lex script: %w", err)
		}
		if tok.EOF() {
			break
		}

		switch tok.Type {
		case symbols["Semi"]:
			flush()
		case symbols["Comment"]:
			current.WriteString(tok.Value)
		default:
			if strings.TrimSpace(tok.Value) != "" {
				bare = true
			}
			current.WriteString(tok.Value)
		}
	}
	flush()

	return stmts, nil
}

// Count returns the number of top-level statements in the script.
func Count(script string) (int, error) {
	stmts, err := Split(script)
	if err != nil {
		return 0, err
	}
	return len(stmts), nil
}
