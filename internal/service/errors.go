package service

import "errors"

// 错误分类哨兵，调用方用 errors.Is 判别
var (
	// ErrValidation 载荷不合法或业务前置条件不满足
	ErrValidation = errors.New("validation failed")
	// ErrUnauthorized 操作者权限不足
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNotFound 引用的实体不存在
	ErrNotFound = errors.New("not found")
	// ErrConflict 同一实体已存在待审请求
	ErrConflict = errors.New("conflict")
)
