package processor

import (
	"github.com/rs/zerolog"
)

// ProcessorOption 处理器选项函数类型
type ProcessorOption func(*ResumeProcessor)

// WithLogger 设置日志记录器
func WithLogger(l zerolog.Logger) ProcessorOption {
	return func(p *ResumeProcessor) {
		p.log = l
		p.reconciler.log = l
		p.writer.log = l
	}
}

// WithEventsExchange 设置 application.created 事件发布到的交换机
func WithEventsExchange(exchange string) ProcessorOption {
	return func(p *ResumeProcessor) {
		if exchange != "" {
			p.writer.exchange = exchange
		}
	}
}
