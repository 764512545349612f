package processor

import (
	"errors"
	"fmt"
)

// 定义基础错误类型
var (
	ErrMissingEmail      = errors.New("could not extract email from resume")
	ErrTransactionFailed = errors.New("database transaction failed")
	ErrSkillReconcile    = errors.New("failed to reconcile skill")
	ErrFileStoreFailed   = errors.New("failed to store resume file")
	ErrCorruptArchive    = errors.New("invalid or corrupt zip archive")
)

// 处理阶段，记录在 ResumeProcessError.Op 中
const (
	OpExtract     = "extract"
	OpAnalyze     = "analyze"
	OpSaveFile    = "save_file"
	OpTransaction = "transaction"
	OpReadEntry   = "read_entry"
)

// ResumeProcessError 单个简历处理失败。BaseErr 是分类用的错误（哨兵或提取/AI错误），
// Cause 是可选的底层原因，两者都参与 errors.Is / errors.As
type ResumeProcessError struct {
	Filename string
	Op       string
	BaseErr  error
	Cause    error
	Detail   string
}

func (e *ResumeProcessError) Error() string {
	msg := e.BaseErr.Error()
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	if e.Detail != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.Detail)
	}
	return msg
}

func (e *ResumeProcessError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.BaseErr}
	}
	return []error{e.BaseErr, e.Cause}
}

// Is 实现 errors.Is 接口以支持错误比较
func (e *ResumeProcessError) Is(target error) bool {
	return errors.Is(e.BaseErr, target) || (e.Cause != nil && errors.Is(e.Cause, target))
}

func newProcessError(filename, op string, base error) *ResumeProcessError {
	return &ResumeProcessError{Filename: filename, Op: op, BaseErr: base}
}

// NewTransactionError 事务失败，同时保留底层原因
func NewTransactionError(filename string, cause error) *ResumeProcessError {
	return &ResumeProcessError{
		Filename: filename,
		Op:       OpTransaction,
		BaseErr:  ErrTransactionFailed,
		Cause:    cause,
	}
}
