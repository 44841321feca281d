// Package model 包含了应用的数据模型定义。
package model

import "strconv"

// GuestOwnerID 是访客身份在 owner 列中存储的固定标识。
// 访客不写入 users 表，仅存在于会话的生命周期内。
const GuestOwnerID = "guest"

// OwnerRef 标识一个资源归属者：注册用户或访客。
// 业务逻辑中始终使用 OwnerRef，只有到存储边界才规范化为字符串，
// 避免数字 ID 与字面量 "guest" 混用造成的类型混乱。
type OwnerRef struct {
	userID uint
	guest  bool
}

// RegisteredOwner 构造一个注册用户的归属引用。
func RegisteredOwner(userID uint) OwnerRef {
	return OwnerRef{userID: userID}
}

// GuestOwner 构造访客的归属引用。
func GuestOwner() OwnerRef {
	return OwnerRef{guest: true}
}

// IsGuest 报告该归属引用是否为访客。
func (o OwnerRef) IsGuest() bool {
	return o.guest
}

// String 将归属引用规范化为 owner 列中存储的字符串。
func (o OwnerRef) String() string {
	if o.guest {
		return GuestOwnerID
	}
	return strconv.FormatUint(uint64(o.userID), 10)
}

// Identity 描述一次会话解析出的调用方身份。
type Identity struct {
	Owner       OwnerRef
	DisplayName string
}

// IsGuest 报告该身份是否为访客。
func (i Identity) IsGuest() bool {
	return i.Owner.IsGuest()
}
