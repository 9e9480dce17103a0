package buildquery

import (
	"fmt"
	"strconv"
	"strings"
)

// Clause is a predicate whose placeholders are written as local references
// {0}, {1}, ... into its own Args. Build renumbers them into one global,
// gap-free $1..$n sequence.
type Clause struct {
	Format string
	Args   []interface{}
}

// Builder accumulates predicates. It is a value: Where returns a new
// Builder and never mutates the receiver, so one partial query can be
// branched without aliasing.
type Builder struct {
	table   string
	columns []string
	clauses []Clause
	orderBy string
	limit   int
}

func NewBuilder(table string, columns ...string) Builder {
	return Builder{table: table, columns: append([]string(nil), columns...)}
}

// Where appends a predicate. format references args as {0}, {1}, ...
func (b Builder) Where(format string, args ...interface{}) Builder {
	next := b
	next.clauses = make([]Clause, len(b.clauses), len(b.clauses)+1)
	copy(next.clauses, b.clauses)
	next.clauses = append(next.clauses, Clause{Format: format, Args: append([]interface{}(nil), args...)})
	return next
}

func (b Builder) OrderBy(expr string) Builder {
	b.orderBy = expr
	return b
}

func (b Builder) Limit(n int) Builder {
	b.limit = n
	return b
}

// Render produces the statement text, the rendered predicates and the
// positional argument list in placeholder order.
func (b Builder) Render() (sql string, rendered []string, args []interface{}, err error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "SELECT %s FROM %s WHERE 1=1", strings.Join(b.columns, ", "), b.table)

	for _, c := range b.clauses {
		text, err := renumber(c, len(args))
		if err != nil {
			return "", nil, nil, err
		}
		rendered = append(rendered, text)
		args = append(args, c.Args...)
		sb.WriteString(" AND ")
		sb.WriteString(text)
	}

	if b.orderBy != "" {
		sb.WriteString(" ORDER BY ")
		sb.WriteString(b.orderBy)
	}
	if b.limit > 0 {
		fmt.Fprintf(&sb, " LIMIT %d", b.limit)
	}

	return sb.String(), rendered, args, nil
}

// renumber rewrites {k} into $(offset+k+1). Every arg must be referenced.
func renumber(c Clause, offset int) (string, error) {
	var out strings.Builder
	used := make([]bool, len(c.Args))
	format := c.Format

	for {
		open := strings.IndexByte(format, '{')
		if open < 0 {
			out.WriteString(format)
			break
		}
		end := strings.IndexByte(format[open:], '}')
		if end < 0 {
			return "", fmt.Errorf("unterminated placeholder in %q", c.Format)
		}
		end += open

		idx, err := strconv.Atoi(format[open+1 : end])
		if err != nil || idx < 0 || idx >= len(c.Args) {
			return "", fmt.Errorf("placeholder %s out of range in %q", format[open:end+1], c.Format)
		}
		used[idx] = true

		out.WriteString(format[:open])
		out.WriteString("$" + strconv.Itoa(offset+idx+1))
		format = format[end+1:]
	}

	for i, u := range used {
		if !u {
			return "", fmt.Errorf("argument %d unused in %q", i, c.Format)
		}
	}
	return out.String(), nil
}
