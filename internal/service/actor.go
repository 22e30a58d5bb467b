package service

import "forum_go/internal/model"

// Actor 当前操作者
//
// Identity is resolved outside this package (JWT middleware in the API,
// fixtures in tests); services only consume the resolved id, display
// name and role.
type Actor struct {
	ID   int64
	Name string
	Role int
}

// IsModerator 是否具备版主及以上权限
func (a *Actor) IsModerator() bool {
	return a.Role >= model.RoleModerator
}

// IsAdmin 是否具备管理员权限
func (a *Actor) IsAdmin() bool {
	return a.Role >= model.RoleAdmin
}

// CanEdit 是否可编辑该作者的内容（本人或版主）
func (a *Actor) CanEdit(authorID int64) bool {
	return a.ID == authorID || a.IsModerator()
}
