package processor

import (
	"errors"
	"fmt"
)

// 管道错误分类
// 仅 ErrUnsupportedFormat 与 ErrInsufficientContent 对单次调用是致命的，
// 其余错误都只导致降级，管道继续运行
var (
	// ErrUnsupportedFormat 输入MIME类型或扩展名不受支持
	ErrUnsupportedFormat = errors.New("不支持的文档格式")
	// ErrInsufficientContent 所有提取手段用尽后文本仍低于最小长度
	ErrInsufficientContent = errors.New("提取文本内容不足")
	// ErrEngineUnavailable 某个OCR或AI引擎不可用
	ErrEngineUnavailable = errors.New("引擎不可用")
	// ErrServiceError AI或网络服务失败
	ErrServiceError = errors.New("外部服务调用失败")
	// ErrParseError AI应答不符合预期结构
	ErrParseError = errors.New("应答解析失败")
)

// PipelineError 携带文件与阶段上下文的管道错误
type PipelineError struct {
	Filename string // 原始文件名
	Op       string // 发生错误的管道阶段
	BaseErr  error  // 基础错误分类
	Detail   string // 补充信息
}

// Error 实现 error 接口
func (e *PipelineError) Error() string {
	msg := fmt.Sprintf("[%s] %s: %v", e.Op, e.Filename, e.BaseErr)
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	return msg
}

// Unwrap 支持 errors.Is / errors.As
func (e *PipelineError) Unwrap() error {
	return e.BaseErr
}

// Is 按基础错误分类比较
func (e *PipelineError) Is(target error) bool {
	return errors.Is(e.BaseErr, target)
}

// newPipelineError 构造管道错误
func newPipelineError(filename, op string, baseErr error, detail string) *PipelineError {
	return &PipelineError{
		Filename: filename,
		Op:       op,
		BaseErr:  baseErr,
		Detail:   detail,
	}
}

// IsFatal 判断错误是否应终止本次管道调用
func IsFatal(err error) bool {
	return errors.Is(err, ErrUnsupportedFormat) || errors.Is(err, ErrInsufficientContent)
}
