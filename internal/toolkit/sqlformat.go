// Package toolkit 工具页背后的纯函数：SQL / JSON 格式化、大小写转换、
// 文本统计、进制转换、CSV 转 HTML 表格。
package toolkit

import (
	"errors"
	"strings"
	"unicode"
)

type sqlTokenKind int

const (
	tokWord sqlTokenKind = iota
	tokString
	tokQuoted
	tokNumber
	tokLineComment
	tokBlockComment
	tokPunct
	tokOperator
)

type sqlToken struct {
	kind sqlTokenKind
	text string
}

var sqlOperators = []string{"->>", "<>", "<=", ">=", "!=", "||", "::", "==", "->"}

var ErrUnterminated = errors.New("unterminated string, identifier or comment")

func isWordStart(r rune) bool {
	return unicode.IsLetter(r) || r == '_' || r == '@' || r == '$'
}

func isWordPart(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '$'
}

// tokenizeSQL 丢弃空白，保留字符串、引用标识符和注释原文
func tokenizeSQL(sql string) ([]sqlToken, error) {
	rs := []rune(sql)
	var tokens []sqlToken
	i := 0
	for i < len(rs) {
		r := rs[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case r == '-' && i+1 < len(rs) && rs[i+1] == '-':
			j := i
			for j < len(rs) && rs[j] != '\n' {
				j++
			}
			tokens = append(tokens, sqlToken{tokLineComment, strings.TrimRight(string(rs[i:j]), " \t\r")})
			i = j
		case r == '/' && i+1 < len(rs) && rs[i+1] == '*':
			j := i + 2
			for j+1 < len(rs) && !(rs[j] == '*' && rs[j+1] == '/') {
				j++
			}
			if j+1 >= len(rs) {
				return nil, ErrUnterminated
			}
			j += 2
			tokens = append(tokens, sqlToken{tokBlockComment, string(rs[i:j])})
			i = j
		case r == '\'':
			j, err := scanQuoted(rs, i, '\'')
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, sqlToken{tokString, string(rs[i:j])})
			i = j
		case r == '"' || r == '`':
			j, err := scanQuoted(rs, i, r)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, sqlToken{tokQuoted, string(rs[i:j])})
			i = j
		case r == '[':
			j := i + 1
			for j < len(rs) && rs[j] != ']' {
				j++
			}
			if j >= len(rs) {
				return nil, ErrUnterminated
			}
			tokens = append(tokens, sqlToken{tokQuoted, string(rs[i : j+1])})
			i = j + 1
		case unicode.IsDigit(r) || (r == '.' && i+1 < len(rs) && unicode.IsDigit(rs[i+1])):
			j := i
			for j < len(rs) && (unicode.IsDigit(rs[j]) || rs[j] == '.' || rs[j] == 'e' || rs[j] == 'E') {
				j++
			}
			tokens = append(tokens, sqlToken{tokNumber, string(rs[i:j])})
			i = j
		case isWordStart(r):
			j := i + 1
			for j < len(rs) && isWordPart(rs[j]) {
				j++
			}
			tokens = append(tokens, sqlToken{tokWord, string(rs[i:j])})
			i = j
		case strings.ContainsRune("(),;.", r):
			tokens = append(tokens, sqlToken{tokPunct, string(r)})
			i++
		default:
			op := string(r)
			for _, candidate := range sqlOperators {
				if strings.HasPrefix(string(rs[i:]), candidate) {
					op = candidate
					break
				}
			}
			tokens = append(tokens, sqlToken{tokOperator, op})
			i += len([]rune(op))
		}
	}
	return tokens, nil
}

// scanQuoted 引号内连续两个引号视为转义
func scanQuoted(rs []rune, start int, quote rune) (int, error) {
	j := start + 1
	for j < len(rs) {
		if rs[j] == quote {
			if j+1 < len(rs) && rs[j+1] == quote {
				j += 2
				continue
			}
			return j + 1, nil
		}
		if quote == '\'' && rs[j] == '\\' && j+1 < len(rs) {
			j += 2
			continue
		}
		j++
	}
	return 0, ErrUnterminated
}

var sqlKeywords = toSet(`SELECT FROM WHERE AND OR NOT NULL IS IN AS ON USING JOIN INNER LEFT RIGHT FULL OUTER CROSS
GROUP BY ORDER HAVING LIMIT OFFSET UNION ALL INTERSECT EXCEPT DISTINCT INSERT INTO VALUES UPDATE SET DELETE
CREATE TABLE DROP ALTER ADD COLUMN INDEX PRIMARY KEY FOREIGN REFERENCES DEFAULT UNIQUE CASE WHEN THEN ELSE END
ASC DESC LIKE ILIKE BETWEEN EXISTS WITH TRUE FALSE IF REPLACE RETURNING`)

var sqlFunctions = toSet(`COUNT SUM AVG MIN MAX COALESCE IFNULL NULLIF CAST UPPER LOWER LENGTH ROUND NOW
SUBSTRING SUBSTR CONCAT TRIM ABS DATE YEAR MONTH DAY`)

func toSet(words string) map[string]bool {
	set := map[string]bool{}
	for _, w := range strings.Fields(words) {
		set[w] = true
	}
	return set
}

type clauseStyle int

const (
	clauseBlock clauseStyle = iota // 关键字单独一行，内容缩进
	clauseJoin                     // 关键字另起一行，内容跟在后面
	clauseSetOp                    // UNION 等，前后都换行
)

var sqlClauses = []struct {
	words []string
	style clauseStyle
}{
	{[]string{"LEFT", "OUTER", "JOIN"}, clauseJoin},
	{[]string{"RIGHT", "OUTER", "JOIN"}, clauseJoin},
	{[]string{"FULL", "OUTER", "JOIN"}, clauseJoin},
	{[]string{"SELECT", "DISTINCT"}, clauseBlock},
	{[]string{"GROUP", "BY"}, clauseBlock},
	{[]string{"ORDER", "BY"}, clauseBlock},
	{[]string{"INSERT", "INTO"}, clauseBlock},
	{[]string{"DELETE", "FROM"}, clauseBlock},
	{[]string{"UNION", "ALL"}, clauseSetOp},
	{[]string{"INNER", "JOIN"}, clauseJoin},
	{[]string{"LEFT", "JOIN"}, clauseJoin},
	{[]string{"RIGHT", "JOIN"}, clauseJoin},
	{[]string{"FULL", "JOIN"}, clauseJoin},
	{[]string{"CROSS", "JOIN"}, clauseJoin},
	{[]string{"JOIN"}, clauseJoin},
	{[]string{"SELECT"}, clauseBlock},
	{[]string{"FROM"}, clauseBlock},
	{[]string{"WHERE"}, clauseBlock},
	{[]string{"HAVING"}, clauseBlock},
	{[]string{"LIMIT"}, clauseBlock},
	{[]string{"OFFSET"}, clauseBlock},
	{[]string{"VALUES"}, clauseBlock},
	{[]string{"UPDATE"}, clauseBlock},
	{[]string{"SET"}, clauseBlock},
	{[]string{"RETURNING"}, clauseBlock},
	{[]string{"UNION"}, clauseSetOp},
	{[]string{"INTERSECT"}, clauseSetOp},
	{[]string{"EXCEPT"}, clauseSetOp},
}

// 逗号后换行的子句
var sqlListClauses = toSet("SELECT SELECT_DISTINCT GROUP_BY ORDER_BY SET VALUES RETURNING")

type sqlBlock struct {
	base      int
	openLevel int
	parens    int
	clause    string
}

type sqlFormatter struct {
	indent  string
	upper   bool
	lines   []string
	line    strings.Builder
	level   int
	pending int
	blocks  []*sqlBlock
	prev    *sqlToken
	between bool
}

type SQLFormatOptions struct {
	Indent    int
	Uppercase bool
}

// FormatSQL 主要子句换行，SELECT 列表逗号后换行，AND/OR 缩进，子查询增加缩进
func FormatSQL(sql string, opts SQLFormatOptions) (string, error) {
	if strings.TrimSpace(sql) == "" {
		return "", errors.New("sql is empty")
	}
	if opts.Indent <= 0 {
		opts.Indent = 2
	}
	if opts.Indent > 8 {
		opts.Indent = 8
	}
	tokens, err := tokenizeSQL(sql)
	if err != nil {
		return "", err
	}

	f := &sqlFormatter{
		indent:  strings.Repeat(" ", opts.Indent),
		upper:   opts.Uppercase,
		pending: -1,
		blocks:  []*sqlBlock{{}},
	}
	for i := 0; i < len(tokens); i++ {
		i += f.token(tokens, i)
	}
	f.flush()
	return strings.TrimRight(strings.Join(f.lines, "\n"), "\n"), nil
}

func (f *sqlFormatter) block() *sqlBlock {
	return f.blocks[len(f.blocks)-1]
}

func (f *sqlFormatter) flush() {
	content := strings.TrimRight(f.line.String(), " ")
	if content != "" {
		f.lines = append(f.lines, strings.Repeat(f.indent, f.level)+content)
	}
	f.line.Reset()
}

func (f *sqlFormatter) newline(level int) {
	f.flush()
	f.level = level
}

func (f *sqlFormatter) keyword(word string) string {
	if f.upper {
		return strings.ToUpper(word)
	}
	return strings.ToLower(word)
}

func (f *sqlFormatter) needsSpace(tok sqlToken) bool {
	if f.line.Len() == 0 || f.prev == nil {
		return false
	}
	p := f.prev
	switch {
	case tok.text == "," || tok.text == ")" || tok.text == "." || tok.text == ";":
		return false
	case p.text == "(" || p.text == ".":
		return false
	case tok.text == "::" || p.text == "::":
		return false
	case tok.text == "(" && p.kind == tokWord:
		upper := strings.ToUpper(p.text)
		if sqlFunctions[upper] {
			return false
		}
		// INSERT INTO t (a, b) 的列清单与表名之间留空格
		return sqlKeywords[upper] || f.block().clause == "INSERT_INTO"
	case tok.text == "(" && p.kind == tokQuoted:
		return f.block().clause == "INSERT_INTO"
	}
	return true
}

func (f *sqlFormatter) write(tok sqlToken) {
	if f.pending >= 0 {
		f.newline(f.pending)
		f.pending = -1
	}
	if f.needsSpace(tok) {
		f.line.WriteByte(' ')
	}
	f.line.WriteString(tok.text)
	t := tok
	f.prev = &t
}

// matchClause 返回匹配的子句和占用的 token 数
func matchClause(tokens []sqlToken, i int) (string, clauseStyle, int) {
	for _, c := range sqlClauses {
		if i+len(c.words) > len(tokens) {
			continue
		}
		ok := true
		for k, w := range c.words {
			t := tokens[i+k]
			if t.kind != tokWord || !strings.EqualFold(t.text, w) {
				ok = false
				break
			}
		}
		if ok {
			return strings.Join(c.words, " "), c.style, len(c.words)
		}
	}
	return "", 0, 0
}

func nextIsSubquery(tokens []sqlToken, i int) bool {
	for j := i + 1; j < len(tokens); j++ {
		if tokens[j].kind == tokLineComment || tokens[j].kind == tokBlockComment {
			continue
		}
		return tokens[j].kind == tokWord &&
			(strings.EqualFold(tokens[j].text, "SELECT") || strings.EqualFold(tokens[j].text, "WITH"))
	}
	return false
}

// token 处理 tokens[i]，返回额外消耗的 token 数
func (f *sqlFormatter) token(tokens []sqlToken, i int) int {
	tok := tokens[i]
	b := f.block()

	switch tok.kind {
	case tokWord:
		upper := strings.ToUpper(tok.text)
		if b.parens == 0 {
			if clause, style, n := matchClause(tokens, i); n > 0 {
				text := f.keyword(clause)
				switch style {
				case clauseBlock:
					f.pending = -1
					f.newline(b.base)
					f.write(sqlToken{tokWord, text})
					f.pending = b.base + 1
					b.clause = strings.ReplaceAll(clause, " ", "_")
				case clauseJoin:
					f.pending = -1
					f.newline(b.base)
					f.write(sqlToken{tokWord, text})
					b.clause = "JOIN"
				case clauseSetOp:
					f.pending = -1
					f.newline(b.base)
					f.write(sqlToken{tokWord, text})
					f.pending = b.base
					b.clause = ""
				}
				return n - 1
			}
			if (upper == "AND" && !f.between) || upper == "OR" || (upper == "ON" && b.clause == "JOIN") {
				f.pending = -1
				f.newline(b.base + 1)
				f.write(sqlToken{tokWord, f.keyword(upper)})
				return 0
			}
		}
		if upper == "BETWEEN" {
			f.between = true
		} else if upper == "AND" && f.between {
			f.between = false
		}
		if sqlKeywords[upper] || sqlFunctions[upper] {
			tok.text = f.keyword(upper)
		}
		f.write(tok)

	case tokPunct:
		switch tok.text {
		case "(":
			if nextIsSubquery(tokens, i) {
				f.write(tok)
				f.blocks = append(f.blocks, &sqlBlock{base: f.level + 1, openLevel: f.level})
				return 0
			}
			b.parens++
			f.write(tok)
		case ")":
			if b.parens > 0 {
				b.parens--
				f.write(tok)
			} else if len(f.blocks) > 1 {
				f.blocks = f.blocks[:len(f.blocks)-1]
				f.pending = -1
				f.newline(b.openLevel)
				f.write(tok)
			} else {
				f.write(tok)
			}
		case ",":
			f.write(tok)
			if b.parens == 0 && sqlListClauses[b.clause] {
				f.pending = b.base + 1
			}
		case ";":
			f.pending = -1
			f.write(tok)
			f.flush()
			f.blocks = []*sqlBlock{{}}
			f.between = false
			f.level = 0
			if i < len(tokens)-1 {
				f.lines = append(f.lines, "")
			}
		default:
			f.write(tok)
		}

	case tokLineComment:
		f.write(tok)
		f.pending = f.level

	default:
		f.write(tok)
	}
	return 0
}
