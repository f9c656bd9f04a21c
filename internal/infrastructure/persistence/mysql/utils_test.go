package mysql

import (
	"errors"
	"testing"

	"gorm.io/gorm"
)

// TestIsDuplicateError 唯一索引冲突的识别
// 用户邮箱和购物车(user_id, book_id)的插入都依赖这一个判断
func TestIsDuplicateError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil错误", nil, false},
		{"GORM重复键错误", gorm.ErrDuplicatedKey, true},
		{"包装过的GORM重复键错误", errors.Join(errors.New("插入失败"), gorm.ErrDuplicatedKey), true},
		{"MySQL 1062报文", errors.New("Error 1062 (23000): Duplicate entry 'a@b.com' for key 'idx_email'"), true},
		{"普通错误", errors.New("connection refused"), false},
	}
	for _, tc := range cases {
		if got := isDuplicateError(tc.err); got != tc.want {
			t.Errorf("%s: 期望%v，实际%v", tc.name, tc.want, got)
		}
	}
}
