package web

import "github.com/gin-gonic/gin"

// GetQuery 获取查询参数，带默认值
func GetQuery(c *gin.Context, key, defaultValue string) string {
	val := c.Query(key)
	if val == "" {
		return defaultValue
	}
	return val
}
