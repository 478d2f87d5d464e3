package main

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"PicRenUtil/internal/claim"
	"PicRenUtil/internal/config"
	"PicRenUtil/internal/device"
	"PicRenUtil/internal/form"
)

/* -------------------- Window state -------------------- */

type renameUI struct {
	app  fyne.App
	win  fyne.Window
	ctrl *form.Controller
	cfg  *config.Config

	deviceButtons map[string]*widget.Button
	deviceLabel   *widget.Label
	summaryLabel  *widget.Label
	fileLabel     *widget.Label
	remarkEntry   *widget.Entry
	qtyEntry      *widget.Entry
	generateBtn   *widget.Button
}

func newRenameUI(a fyne.App, w fyne.Window, ctrl *form.Controller, cfg *config.Config) *renameUI {
	return &renameUI{
		app:           a,
		win:           w,
		ctrl:          ctrl,
		cfg:           cfg,
		deviceButtons: map[string]*widget.Button{},
	}
}

func (u *renameUI) build() fyne.CanvasObject {
	/* -------------------- Left: device buttons + totals -------------------- */

	left := container.NewVBox(widget.NewLabelWithStyle("选择设备：", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}))
	for _, dev := range device.Buttons() {
		dev := dev // per-iteration copy; go.mod targets go 1.21 (pre-1.22 loopvar semantics)
		btn := widget.NewButton(dev, func() { u.onDevice(dev) })
		u.deviceButtons[dev] = btn
		left.Add(btn)
	}

	u.summaryLabel = widget.NewLabel(u.ctrl.Summary())
	u.summaryLabel.SizeName = theme.SizeNameCaptionText
	left.Add(widget.NewSeparator())
	left.Add(u.summaryLabel)

	/* -------------------- Right: file, remark, quantity, generate -------------------- */

	selectBtn := widget.NewButtonWithIcon("选择图片", theme.FileImageIcon(), u.onSelectFile)

	u.fileLabel = widget.NewLabel("")
	u.fileLabel.Wrapping = fyne.TextWrapWord
	u.deviceLabel = widget.NewLabel("")

	u.remarkEntry = widget.NewEntry()
	u.remarkEntry.SetPlaceHolder("备注（可选）")
	u.remarkEntry.OnChanged = u.ctrl.SetRemark

	u.qtyEntry = widget.NewEntry()
	u.qtyEntry.SetText(u.ctrl.Selection().Quantity)
	u.qtyEntry.OnChanged = u.ctrl.SetQuantity

	u.generateBtn = widget.NewButtonWithIcon("生成重命名副本", theme.ContentCopyIcon(), u.onGenerate)
	u.generateBtn.Importance = widget.HighImportance

	exportBtn := widget.NewButtonWithIcon("导出 CSV", theme.DocumentSaveIcon(), u.onExport)
	exportBtn.Importance = widget.LowImportance

	right := container.NewVBox(
		selectBtn,
		u.fileLabel,
		u.deviceLabel,
		widget.NewLabel("备注（可选）："),
		u.remarkEntry,
		widget.NewLabel("输入设备数量："),
		u.qtyEntry,
		layout.NewSpacer(),
		u.generateBtn,
		exportBtn,
	)

	/* -------------------- Top: log access -------------------- */

	carrot := widget.NewButton("Carrot", u.onViewLog)
	carrot.Importance = widget.LowImportance
	top := container.NewHBox(layout.NewSpacer(), carrot)

	u.refreshDevice()
	u.refreshFile()

	split := container.NewHSplit(container.NewVScroll(left), container.NewPadded(right))
	split.Offset = 0.35
	return container.NewBorder(top, nil, nil, nil, split)
}

/* -------------------- Device selection -------------------- */

func (u *renameUI) onDevice(name string) {
	if !u.ctrl.SelectDevice(name) {
		u.refreshDevice()
		return
	}

	entry := widget.NewEntry()
	entry.SetPlaceHolder("例如：光猫")
	dialog.ShowForm("自定义设备", "确定", "取消",
		[]*widget.FormItem{widget.NewFormItem("请输入设备名称：", entry)},
		func(ok bool) {
			text := ""
			if ok {
				text = entry.Text
			}
			u.ctrl.SetCustomDevice(text)
			u.refreshDevice()
		}, u.win)
}

func (u *renameUI) refreshDevice() {
	current := u.ctrl.Selection().Device
	highlighted := current
	if current != "" && !device.IsFixed(current) {
		highlighted = device.Other
	}
	for dev, btn := range u.deviceButtons {
		if dev == highlighted {
			btn.Importance = widget.HighImportance
		} else {
			btn.Importance = widget.MediumImportance
		}
		btn.Refresh()
	}

	if current == "" {
		u.deviceLabel.SetText("未选择设备")
	} else {
		u.deviceLabel.SetText("当前设备：" + current)
	}
	u.refreshSummary()
}

func (u *renameUI) refreshSummary() {
	u.summaryLabel.SetText(u.ctrl.Summary())
}

// reloadTotals runs on the UI goroutine after the log changed on disk.
func (u *renameUI) reloadTotals() {
	if err := u.ctrl.Reload(); err != nil {
		return
	}
	u.refreshSummary()
}

/* -------------------- File selection -------------------- */

func (u *renameUI) onSelectFile() {
	fd := dialog.NewFileOpen(func(r fyne.URIReadCloser, err error) {
		if err != nil {
			dialog.ShowError(err, u.win)
			return
		}
		path := ""
		if r != nil {
			path = r.URI().Path()
			r.Close()
		}
		u.ctrl.SelectFile(path)
		u.refreshFile()
	}, u.win)
	fd.SetFilter(storage.NewExtensionFileFilter(withUpper(u.cfg.ImageExts)))
	fd.Resize(fyne.NewSize(700, 480))
	fd.Show()
}

func (u *renameUI) refreshFile() {
	sel := u.ctrl.Selection()
	if sel.File == "" {
		u.fileLabel.SetText("未选择任何图片")
		u.fileLabel.Importance = widget.LowImportance
	} else {
		u.fileLabel.SetText("已选择：" + filepath.Base(sel.File))
		u.fileLabel.Importance = widget.MediumImportance
	}
	u.fileLabel.Refresh()

	if u.ctrl.CanGenerate() {
		u.generateBtn.Enable()
	} else {
		u.generateBtn.Disable()
	}
}

/* -------------------- Generate -------------------- */

func (u *renameUI) onGenerate() {
	plan, err := u.ctrl.Prepare()
	if err != nil {
		u.showFailure(form.Outcome{}, err)
		return
	}

	if plan.Exists {
		dialog.ShowConfirm("覆盖确认", fmt.Sprintf("文件 %s 已存在，是否覆盖？", plan.DestName), func(ok bool) {
			if ok {
				u.commit(plan, true)
			}
		}, u.win)
		return
	}
	u.commit(plan, false)
}

func (u *renameUI) commit(plan claim.Plan, overwrite bool) {
	out, err := u.ctrl.Generate(plan, overwrite)
	u.refreshSummary()
	if err != nil {
		u.showFailure(out, err)
		return
	}
	dialog.ShowInformation("成功", "已生成文件：\n"+plan.DestName, u.win)
}

func (u *renameUI) showFailure(out form.Outcome, err error) {
	if errors.Is(err, claim.ErrDestinationExists) {
		return
	}
	if msg, ok := form.Warning(err); ok {
		dialog.ShowInformation("警告", msg, u.win)
		return
	}
	dialog.ShowError(errors.New(form.Failure(out, err)), u.win)
}

/* -------------------- Log access -------------------- */

func (u *renameUI) onViewLog() {
	if !u.ctrl.GateEnabled() {
		u.openLog("")
		return
	}

	pw := widget.NewPasswordEntry()
	dialog.ShowForm("密码验证", "确定", "取消",
		[]*widget.FormItem{widget.NewFormItem("请输入日志查看密码：", pw)},
		func(ok bool) {
			// cancel is not a wrong password
			if !ok {
				return
			}
			u.openLog(pw.Text)
		}, u.win)
}

func (u *renameUI) openLog(password string) {
	path, err := u.ctrl.ViewLog(password)
	if err != nil {
		u.showFailure(form.Outcome{}, err)
		return
	}

	target, err := url.Parse(storage.NewFileURI(path).String())
	if err == nil {
		err = u.app.OpenURL(target)
	}
	if err != nil {
		dialog.ShowError(fmt.Errorf("无法打开日志，请手动查看 %s", path), u.win)
	}
}

/* -------------------- CSV export -------------------- */

func (u *renameUI) onExport() {
	d := dialog.NewFileSave(func(uc fyne.URIWriteCloser, err error) {
		if err != nil {
			dialog.ShowError(err, u.win)
			return
		}
		if uc == nil {
			return
		}
		defer uc.Close()

		n, err := u.ctrl.ExportCSV(uc)
		if err != nil {
			dialog.ShowError(err, u.win)
			return
		}
		dialog.ShowInformation("导出完成", fmt.Sprintf("已导出 %d 条记录：\n%s", n, uc.URI().Path()), u.win)
	}, u.win)
	d.SetFileName(fmt.Sprintf("claims_%s.csv", time.Now().Format("20060102_150405")))
	d.Show()
}

/* -------------------- small helpers -------------------- */

func withUpper(exts []string) []string {
	out := make([]string, 0, len(exts)*2)
	for _, e := range exts {
		out = append(out, e)
		if up := strings.ToUpper(e); up != e {
			out = append(out, up)
		}
	}
	return out
}
