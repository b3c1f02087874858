package repository

import (
	"errors"
	"strings"

	"VidHub/internal/auth"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

// IsDuplicateKey 判断是否为唯一键冲突：开启TranslateError时gorm会翻译成ErrDuplicatedKey，
// 否则用errors.As检查错误的“根”是不是一个MySQLError，错误号1062就是 "Duplicate entry"
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == 1062
}

// OwnedBy 列表和删除共用的可见范围：staff看全部，其他人只看自己的行
// 列表和删除必须用同一个scope，否则列表里暴露的ID可能被非所有者删掉
func OwnedBy(p auth.Principal) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if p.IsStaff {
			return db
		}
		return db.Where("user_id = ?", p.UserID)
	}
}

// Paginate 页码从1开始
func Paginate(page, pageSize int) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if page < 1 {
			page = 1
		}
		if pageSize <= 0 || pageSize > 100 {
			pageSize = 20
		}
		// pageSize：每页大小。offset: “跳过” 多少条记录，再开始取数据
		return db.Offset((page - 1) * pageSize).Limit(pageSize)
	}
}

// 预加载用户时只取公开字段，避免密码哈希被带进缓存
func selectPublicUser(db *gorm.DB) *gorm.DB {
	return db.Select("id", "username", "created_at", "updated_at")
}

// likeEscaper 转义用户输入里的LIKE通配符；用'!'做转义符，MySQL和SQLite对它的解释一致
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// containsPattern 生成 "%关键字%"，配合 LIKE ? ESCAPE '!' 使用
func containsPattern(query string) string {
	return "%" + likeEscaper.Replace(query) + "%"
}
