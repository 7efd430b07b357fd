// app/seenmw.go
package app

import (
	"time"

	"ong_equipment_tool/db"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func TouchLastSeen(repo *db.Repo, rdb *redis.Client, throttle time.Duration, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := c.GetString("userID")
		if uid == "" {
			c.Next()
			return
		}

		key := "user:lastseen:" + uid
		ok, err := rdb.SetNX(c.Request.Context(), key, "1", throttle).Result()
		if err != nil {
			log.Debug("last-seen throttle unavailable", zap.Error(err))
		}
		if ok {
			// 忽略错误，不阻塞请求
			if err := repo.TouchUserSeen(c.Request.Context(), uid); err != nil {
				log.Debug("touch last seen failed", zap.String("user", uid), zap.Error(err))
			}
		}
		c.Next()
	}
}
