package reader

import (
	"io"
	"strconv"
	"strings"

	"github.com/microsoft/schemy/lang"
)

// Reader assembles s-expressions from a token stream (spec.md §4.1). It
// supports pulling one expression at a time, which Interpreter.Evaluate
// and the REPL rely on.
type Reader struct {
	lx *Lexer
}

// New constructs a Reader over r.
func New(r io.Reader) *Reader {
	return &Reader{lx: NewLexer(r)}
}

// Read parses and returns the next expression, or lang.EOF once the
// underlying input is exhausted.
func (rd *Reader) Read() (lang.Value, error) {
	tok, err := rd.lx.Next()
	if err != nil {
		return lang.Value{}, err
	}
	return rd.readFrom(tok)
}

// ReadAll parses every expression in r.
func ReadAll(r io.Reader) ([]lang.Value, error) {
	rd := New(r)
	var out []lang.Value
	for {
		v, err := rd.Read()
		if err != nil {
			return nil, err
		}
		if v.Type == lang.TypeEOF {
			return out, nil
		}
		out = append(out, v)
	}
}

// ReadString parses every expression in src.
func ReadString(src string) ([]lang.Value, error) {
	return ReadAll(strings.NewReader(src))
}

func (rd *Reader) readFrom(tok Token) (lang.Value, error) {
	switch tok.Kind {
	case TokEOF:
		return lang.EOF, nil

	case TokLParen:
		return rd.readList()

	case TokRParen:
		return lang.Value{}, lang.NewError(lang.SyntaxError, "unexpected )")

	case TokQuote:
		return rd.readQuoteFamily(lang.SymQuote)
	case TokQuasiquote:
		return rd.readQuoteFamily(lang.SymQuasiquote)
	case TokUnquote:
		return rd.readQuoteFamily(lang.SymUnquote)
	case TokUnquoteSplicing:
		return rd.readQuoteFamily(lang.SymUnquoteSplicing)

	case TokString:
		return lang.Str(tok.Text), nil

	case TokAtom:
		return parseAtom(tok.Text), nil

	default:
		return lang.Value{}, lang.NewError(lang.SyntaxError, "unrecognized token")
	}
}

func (rd *Reader) readQuoteFamily(sym *lang.Symbol) (lang.Value, error) {
	next, err := rd.lx.Next()
	if err != nil {
		return lang.Value{}, err
	}
	if next.Kind == TokEOF {
		return lang.Value{}, lang.Errorf(lang.SyntaxError, "unexpected end of input after %s", sym.Name)
	}
	inner, err := rd.readFrom(next)
	if err != nil {
		return lang.Value{}, err
	}
	return lang.List(lang.Sym(sym), inner), nil
}

func (rd *Reader) readList() (lang.Value, error) {
	var elems []lang.Value
	for {
		tok, err := rd.lx.Next()
		if err != nil {
			return lang.Value{}, err
		}
		if tok.Kind == TokEOF {
			return lang.Value{}, lang.NewError(lang.SyntaxError, "unexpected end of input inside list")
		}
		if tok.Kind == TokRParen {
			return lang.ListFromSlice(elems), nil
		}
		v, err := rd.readFrom(tok)
		if err != nil {
			return lang.Value{}, err
		}
		elems = append(elems, v)
	}
}

func parseAtom(text string) lang.Value {
	switch text {
	case "#t":
		return lang.Bool(true)
	case "#f":
		return lang.Bool(false)
	}
	if i, err := strconv.ParseInt(text, 10, 64); err == nil {
		return lang.Int(i)
	}
	if f, err := strconv.ParseFloat(text, 64); err == nil {
		return lang.Real(f)
	}
	return lang.Sym(lang.Intern(text))
}
