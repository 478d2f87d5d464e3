package form

import (
	"errors"
	"fmt"

	"PicRenUtil/internal/claim"
)

// Warning returns the dialog text for errors the user can fix, and false for
// everything else.
func Warning(err error) (string, bool) {
	switch {
	case errors.Is(err, claim.ErrNoFile):
		return "请先选择图片！", true
	case errors.Is(err, claim.ErrNoDevice):
		return "请先选择设备！", true
	case errors.Is(err, claim.ErrInvalidQuantity):
		return "请输入有效的设备数量（正整数）", true
	case errors.Is(err, claim.ErrInvalidName):
		return "设备名称或备注包含不能用于文件名的字符", true
	}
	return "", false
}

// Failure returns the error dialog text for err, noting what was already
// written when the failure came after the copy.
func Failure(out Outcome, err error) string {
	if errors.Is(err, ErrWrongPassword) {
		return "密码错误！"
	}
	msg := fmt.Sprintf("操作失败：\n%v", err)
	switch {
	case out.LedgerLogged:
		msg += fmt.Sprintf("\n\n副本 %s 与日志已写入，统计行未写入。", out.Plan.DestName)
	case out.TextLogged:
		msg += fmt.Sprintf("\n\n副本 %s 与日志行已写入，但结构化记录未写入（统计仍按日志行计算）。", out.Plan.DestName)
	case out.Copied:
		msg += fmt.Sprintf("\n\n副本 %s 已生成，但日志未写入。", out.Plan.DestName)
	}
	return msg
}
