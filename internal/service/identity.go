package service

import "context"

// StaticRoleResolver 按固定管理员名单解析角色
// 身份/会话由外部系统维护，这里只提供组合与测试所需的最小实现
type StaticRoleResolver struct {
	admins map[string]struct{}
}

// NewStaticRoleResolver 创建静态角色解析器
func NewStaticRoleResolver(adminIDs ...string) *StaticRoleResolver {
	admins := make(map[string]struct{}, len(adminIDs))
	for _, id := range adminIDs {
		admins[id] = struct{}{}
	}
	return &StaticRoleResolver{admins: admins}
}

// IsAdmin 判断用户是否具备管理员权限
func (r *StaticRoleResolver) IsAdmin(_ context.Context, userID string) (bool, error) {
	_, ok := r.admins[userID]
	return ok, nil
}
