package lang

import (
	"strconv"
	"strings"
)

// printValue renders v. write=true escapes string contents the way a
// re-readable literal would (Value.WriteString, used for REPL and CLI
// output); write=false displays raw contents (Value.String).
func printValue(v Value, write bool) string {
	switch v.Type {
	case TypeBool:
		if v.boolean {
			return "#t"
		}
		return "#f"
	case TypeInt:
		return strconv.FormatInt(v.integer, 10)
	case TypeReal:
		return fmtFloat(v.real)
	case TypeString:
		if write {
			return quoteString(v.str)
		}
		return v.str
	case TypeSymbol:
		return v.sym.Name
	case TypeList:
		return printList(v, write)
	case TypeProcedure:
		return printProcedure(v.proc)
	case TypeNative:
		name := v.native.Name
		if name == "" {
			name = "anonymous"
		}
		return "#<NativeProcedure:" + name + ">"
	case TypeUnit:
		return ""
	case TypeEOF:
		return "#<eof>"
	default:
		return "#<unknown>"
	}
}

func quoteString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

func printList(v Value, write bool) string {
	var b strings.Builder
	b.WriteByte('(')
	for i, e := range v.list {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(printValue(e, write))
	}
	b.WriteByte(')')
	return b.String()
}

func printProcedure(p *Procedure) string {
	var b strings.Builder
	b.WriteString("(lambda (")
	for i, param := range p.Params {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(param.Name)
	}
	if p.Variadic != nil {
		if len(p.Params) > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(p.Variadic.Name)
	}
	b.WriteString(") ")
	b.WriteString(p.Body.String())
	b.WriteByte(')')
	return b.String()
}
