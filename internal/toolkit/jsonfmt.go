package toolkit

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// FormatJSON indent 取 0-8，minify 为 true 时压缩
func FormatJSON(input string, indent int, minify bool) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", errors.New("json is empty")
	}

	var buf bytes.Buffer
	if minify {
		if err := json.Compact(&buf, []byte(input)); err != nil {
			return "", describeJSONError(input, err)
		}
		return buf.String(), nil
	}

	if indent < 0 {
		indent = 0
	}
	if indent > 8 {
		indent = 8
	}
	prefix := strings.Repeat(" ", indent)
	if indent == 0 {
		prefix = "\t"
	}
	if err := json.Indent(&buf, []byte(input), "", prefix); err != nil {
		return "", describeJSONError(input, err)
	}
	return buf.String(), nil
}

// describeJSONError 把字节偏移转换成行列号
func describeJSONError(input string, err error) error {
	var syntaxErr *json.SyntaxError
	if !errors.As(err, &syntaxErr) {
		return err
	}
	offset := int(syntaxErr.Offset)
	if offset > len(input) {
		offset = len(input)
	}
	line := 1 + strings.Count(input[:offset], "\n")
	col := offset - strings.LastIndex(input[:offset], "\n")
	return fmt.Errorf("invalid JSON at line %d, column %d: %s", line, col, syntaxErr.Error())
}
