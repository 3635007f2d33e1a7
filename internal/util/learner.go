package util

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// LearnerKey 解析学习者标识：登录用户为 user:<id>，否则读取 X-Learner-ID（浏览器本地生成的 UUID）
func LearnerKey(c *gin.Context) (string, error) {
	if claims := GetUserFromContext(c); claims != nil {
		return fmt.Sprintf("%s%d", LearnerUserPrefix, claims.UserID), nil
	}

	raw := strings.TrimSpace(c.GetHeader(LearnerHeader))
	if raw == "" {
		return "", ErrLearnerRequired
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", ErrInvalidLearner
	}
	return LearnerAnonPrefix + id.String(), nil
}

// OptionalLearnerKey 无法识别时返回空串
func OptionalLearnerKey(c *gin.Context) string {
	key, err := LearnerKey(c)
	if err != nil {
		return ""
	}
	return key
}
