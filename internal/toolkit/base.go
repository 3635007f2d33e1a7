package toolkit

import (
	"fmt"
	"math/big"
	"strings"
)

type BaseConversion struct {
	Input   string `json:"input"`
	From    int    `json:"from"`
	To      int    `json:"to"`
	Result  string `json:"result"`
	Decimal string `json:"decimal"`
}

var basePrefixes = map[string]int{"0x": 16, "0b": 2, "0o": 8}

// ConvertBase 任意精度进制转换，支持 2-36 进制和 0x/0b/0o 前缀
func ConvertBase(value string, from, to int) (*BaseConversion, error) {
	if from < 2 || from > 36 || to < 2 || to > 36 {
		return nil, fmt.Errorf("bases must be between 2 and 36")
	}

	s := strings.ToLower(strings.TrimSpace(value))
	s = strings.ReplaceAll(s, "_", "")
	s = strings.ReplaceAll(s, " ", "")
	neg := false
	if strings.HasPrefix(s, "-") || strings.HasPrefix(s, "+") {
		neg = s[0] == '-'
		s = s[1:]
	}
	if len(s) > 2 {
		if base, ok := basePrefixes[s[:2]]; ok && base == from {
			s = s[2:]
		}
	}
	if s == "" {
		return nil, fmt.Errorf("value is empty")
	}

	n, ok := new(big.Int).SetString(s, from)
	if !ok {
		return nil, fmt.Errorf("%q is not a valid base-%d number", value, from)
	}
	if neg {
		n.Neg(n)
	}

	return &BaseConversion{
		Input:   value,
		From:    from,
		To:      to,
		Result:  strings.ToUpper(n.Text(to)),
		Decimal: n.Text(10),
	}, nil
}
