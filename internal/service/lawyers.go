// Package service 包含了应用的业务逻辑层。
package service

import "know-law-go/internal/model"

// lawyerDirectory 是内置的律师名录。演示系统不做律师侧管理，
// 名录随二进制发布，预约时按 ID 快照姓名与专长。
var lawyerDirectory = []model.Lawyer{
	{ID: "lw-001", Name: "Sarah Al-Mansouri", Specialty: "Family Law", Languages: "ar,en"},
	{ID: "lw-002", Name: "Ahmed Hassan", Specialty: "Corporate Law", Languages: "ar,en"},
	{ID: "lw-003", Name: "Layla Ibrahim", Specialty: "Labor Law", Languages: "ar"},
	{ID: "lw-004", Name: "Omar Khalil", Specialty: "Real Estate Law", Languages: "ar,en"},
	{ID: "lw-005", Name: "Fatima Al-Zahra", Specialty: "Criminal Law", Languages: "ar"},
	{ID: "lw-006", Name: "David Miller", Specialty: "Commercial Law", Languages: "en"},
}

// ListLawyers 返回可预约的律师名录。
func ListLawyers() []model.Lawyer {
	return lawyerDirectory
}

// findLawyer 按 ID 查找律师，未找到返回 nil。
func findLawyer(id string) *model.Lawyer {
	for i := range lawyerDirectory {
		if lawyerDirectory[i].ID == id {
			return &lawyerDirectory[i]
		}
	}
	return nil
}
