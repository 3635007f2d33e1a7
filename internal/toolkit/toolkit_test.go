package toolkit

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatSQL(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		opts SQLFormatOptions
		want string
	}{
		{
			name: "select list and conditions",
			sql:  "select a, b from t where x = 1 and y = 'it''s'",
			opts: SQLFormatOptions{Indent: 2, Uppercase: true},
			want: "SELECT\n  a,\n  b\nFROM\n  t\nWHERE\n  x = 1\n  AND y = 'it''s'",
		},
		{
			name: "function call keeps parentheses tight",
			sql:  "SELECT count(*) FROM users GROUP BY role ORDER BY role desc LIMIT 5",
			opts: SQLFormatOptions{Indent: 4, Uppercase: true},
			want: "SELECT\n    COUNT(*)\nFROM\n    users\nGROUP BY\n    role\nORDER BY\n    role DESC\nLIMIT\n    5",
		},
		{
			name: "insert column list",
			sql:  "insert into t (a, b) values (1, 'x')",
			opts: SQLFormatOptions{Indent: 2, Uppercase: true},
			want: "INSERT INTO\n  t (a, b)\nVALUES\n  (1, 'x')",
		},
		{
			name: "insert into quoted table",
			sql:  "INSERT INTO `users` (name) SELECT lower(name) FROM staff",
			opts: SQLFormatOptions{Indent: 2, Uppercase: true},
			want: "INSERT INTO\n  `users` (name)\nSELECT\n  LOWER(name)\nFROM\n  staff",
		},
		{
			name: "subquery is indented",
			sql:  "SELECT * FROM (select id from users) u",
			opts: SQLFormatOptions{Indent: 2, Uppercase: true},
			want: "SELECT\n  *\nFROM\n  (\n    SELECT\n      id\n    FROM\n      users\n  ) u",
		},
		{
			name: "lowercase keywords",
			sql:  "SELECT id FROM t",
			opts: SQLFormatOptions{Indent: 2, Uppercase: false},
			want: "select\n  id\nfrom\n  t",
		},
		{
			name: "join with on",
			sql:  "select u.name from users u left join orders o on o.user_id = u.id",
			opts: SQLFormatOptions{Uppercase: true},
			want: "SELECT\n  u.name\nFROM\n  users u\nLEFT JOIN orders o\n  ON o.user_id = u.id",
		},
		{
			name: "between does not split",
			sql:  "select id from t where age between 7 and 18 and active = 1",
			opts: SQLFormatOptions{Uppercase: true},
			want: "SELECT\n  id\nFROM\n  t\nWHERE\n  age BETWEEN 7 AND 18\n  AND active = 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FormatSQL(tt.sql, tt.opts)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("FormatSQL() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFormatSQLKeepsStringsAndComments(t *testing.T) {
	got, err := FormatSQL("select 'from where' -- trailing note\nfrom t", SQLFormatOptions{Uppercase: true})
	require.NoError(t, err)
	assert.Contains(t, got, "'from where' -- trailing note")
	assert.Contains(t, got, "\nFROM\n  t")
}

func TestFormatSQLErrors(t *testing.T) {
	_, err := FormatSQL("   ", SQLFormatOptions{})
	assert.Error(t, err)

	_, err = FormatSQL("select 'oops", SQLFormatOptions{})
	assert.ErrorIs(t, err, ErrUnterminated)
}

func TestFormatJSON(t *testing.T) {
	out, err := FormatJSON(`{"a":1,"b":[1,2]}`, 2, false)
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"a\": 1,\n  \"b\": [\n    1,\n    2\n  ]\n}", out)

	out, err = FormatJSON("{\n  \"a\": 1\n}", 2, true)
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, out)

	_, err = FormatJSON("{\n\"a\": }", 2, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

func TestConvertCase(t *testing.T) {
	tests := []struct {
		mode, in, want string
	}{
		{"upper", "Hello World", "HELLO WORLD"},
		{"lower", "Hello World", "hello world"},
		{"title", "hello wORLD", "Hello World"},
		{"sentence", "HELLO THERE. how ARE you? fine", "Hello there. How are you? Fine"},
		{"camel", "hello big world", "helloBigWorld"},
		{"snake", "parseHTTPRequest now", "parse_http_request_now"},
		{"kebab", "Hello_Big World", "hello-big-world"},
	}
	for _, tt := range tests {
		got, err := ConvertCase(tt.in, tt.mode)
		require.NoError(t, err, tt.mode)
		assert.Equal(t, tt.want, got, tt.mode)
	}

	_, err := ConvertCase("x", "shout")
	assert.Error(t, err)
}

func TestAnalyzeText(t *testing.T) {
	st := AnalyzeText("Hello world. How are you?\nFine!")
	assert.Equal(t, 31, st.Characters)
	assert.Equal(t, 26, st.CharactersNoSpaces)
	assert.Equal(t, 6, st.Words)
	assert.Equal(t, 3, st.Sentences)
	assert.Equal(t, 2, st.Lines)
	assert.Equal(t, 1, st.Paragraphs)
	assert.Equal(t, 1, st.ReadingMinutes)

	empty := AnalyzeText("   ")
	assert.Equal(t, 0, empty.Words)
	assert.Equal(t, 0, empty.Sentences)
	assert.Equal(t, 0, empty.Lines)

	long := AnalyzeText(strings.Repeat("word ", 401))
	assert.Equal(t, 3, long.ReadingMinutes)
	assert.Equal(t, 1, long.Sentences)
}

func TestConvertBase(t *testing.T) {
	res, err := ConvertBase("0xff", 16, 2)
	require.NoError(t, err)
	assert.Equal(t, "11111111", res.Result)
	assert.Equal(t, "255", res.Decimal)

	res, err = ConvertBase("-255", 10, 16)
	require.NoError(t, err)
	assert.Equal(t, "-FF", res.Result)

	// 超过 uint64 的数
	res, err = ConvertBase("123456789012345678901234567890", 10, 36)
	require.NoError(t, err)
	back, err := ConvertBase(res.Result, 36, 10)
	require.NoError(t, err)
	assert.Equal(t, "123456789012345678901234567890", back.Result)

	_, err = ConvertBase("102", 2, 10)
	assert.Error(t, err)
	_, err = ConvertBase("1", 1, 10)
	assert.Error(t, err)
	_, err = ConvertBase("1", 10, 37)
	assert.Error(t, err)
}

func TestCSVToHTML(t *testing.T) {
	table, err := CSVToHTML("name,score\nAda,<b>10</b>\nLin", true, "")
	require.NoError(t, err)

	assert.Equal(t, 2, table.Rows)
	assert.Equal(t, 2, table.Columns)
	assert.Contains(t, table.HTML, "<thead>\n<tr><th>name</th><th>score</th></tr>\n</thead>")
	assert.Contains(t, table.HTML, "<td>&lt;b&gt;10&lt;/b&gt;</td>")
	assert.Contains(t, table.HTML, "<tr><td>Lin</td><td></td></tr>")

	table, err = CSVToHTML("a;b\n1;2", false, ";")
	require.NoError(t, err)
	assert.Equal(t, 2, table.Rows)
	assert.NotContains(t, table.HTML, "<thead>")

	_, err = CSVToHTML("a,b", false, "::")
	assert.Error(t, err)
}
