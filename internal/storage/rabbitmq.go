package storage

import (
	"context"
	"fmt"
	"sync"
	"time"

	"ats-go/internal/config"
	"ats-go/internal/logger"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// RabbitMQ 提供事件发布功能
type RabbitMQ struct {
	conn         *amqp.Connection
	channelPool  sync.Pool
	mu           sync.Mutex
	exchangeMap  map[string]bool // 记录已声明的exchange
	queueMap     map[string]bool // 记录已声明的queue
	bindingMap   map[string]bool // 记录已创建的binding (key格式: "exchange:queue:routingKey")
	publishMutex sync.Mutex
	cfg          *config.RabbitMQConfig
	log          zerolog.Logger
}

// NewRabbitMQ 创建RabbitMQ客户端
func NewRabbitMQ(cfg *config.RabbitMQConfig) (*RabbitMQ, error) {
	if cfg == nil {
		return nil, fmt.Errorf("RabbitMQ配置不能为空")
	}
	if cfg.URL == "" {
		return nil, fmt.Errorf("RabbitMQ URL配置不能为空")
	}

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("无法连接到RabbitMQ服务器: %w", err)
	}

	mq := &RabbitMQ{
		conn:        conn,
		exchangeMap: make(map[string]bool),
		queueMap:    make(map[string]bool),
		bindingMap:  make(map[string]bool),
		cfg:         cfg,
		log:         logger.Named("rabbitmq"),
	}

	mq.channelPool = sync.Pool{
		New: func() interface{} {
			ch, errPool := conn.Channel()
			if errPool != nil {
				mq.log.Error().Err(errPool).Msg("创建RabbitMQ通道失败")
				return nil
			}
			return ch
		},
	}

	testCh := mq.getChannel()
	if testCh == nil {
		conn.Close()
		return nil, fmt.Errorf("无法创建RabbitMQ通道")
	}
	mq.putChannel(testCh)

	mq.log.Info().Msg("成功连接到RabbitMQ服务器")
	return mq, nil
}

// SetupTopology 声明事件交换机；配置了通知队列时把它绑定到所有申请事件
func (r *RabbitMQ) SetupTopology() error {
	if err := r.EnsureExchange(r.cfg.EventsExchange, amqp.ExchangeTopic, true); err != nil {
		return err
	}
	if r.cfg.NotificationQueue == "" {
		return nil
	}
	if err := r.EnsureQueue(r.cfg.NotificationQueue, true); err != nil {
		return err
	}
	return r.BindQueue(r.cfg.NotificationQueue, r.cfg.EventsExchange, "application.#")
}

func (r *RabbitMQ) getChannel() *amqp.Channel {
	ch := r.channelPool.Get()
	if ch == nil {
		newCh, err := r.conn.Channel()
		if err != nil {
			r.log.Error().Err(err).Msg("创建新RabbitMQ通道失败")
			return nil
		}
		return newCh
	}
	return ch.(*amqp.Channel)
}

func (r *RabbitMQ) putChannel(ch *amqp.Channel) {
	if ch != nil && !ch.IsClosed() {
		r.channelPool.Put(ch)
	}
}

// Close 关闭连接
func (r *RabbitMQ) Close() error {
	return r.conn.Close()
}

// EnsureExchange 确保exchange存在
func (r *RabbitMQ) EnsureExchange(exchangeName, exchangeType string, durable bool) error {
	if exchangeName == "" {
		return fmt.Errorf("exchange名称不能为空")
	}
	if exchangeName == "amq.default" || exchangeName == "default" {
		return fmt.Errorf("不能声明默认交换机 '%s'", exchangeName)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.exchangeMap[exchangeName] {
		return nil
	}

	ch := r.getChannel()
	if ch == nil {
		return fmt.Errorf("无法获取RabbitMQ通道")
	}
	defer r.putChannel(ch)

	err := ch.ExchangeDeclare(
		exchangeName, // exchange名称
		exchangeType, // exchange类型
		durable,      // 持久化
		false,        // 自动删除
		false,        // 内部专用
		false,        // 非阻塞
		nil,          // 参数
	)
	if err != nil {
		return fmt.Errorf("声明exchange失败: %w", err)
	}

	r.exchangeMap[exchangeName] = true
	r.log.Info().Str("exchange", exchangeName).Str("type", exchangeType).Msg("已确保exchange存在")
	return nil
}

// EnsureQueue 确保队列存在
func (r *RabbitMQ) EnsureQueue(queueName string, durable bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.queueMap[queueName] {
		return nil
	}

	ch := r.getChannel()
	if ch == nil {
		return fmt.Errorf("无法获取RabbitMQ通道")
	}
	defer r.putChannel(ch)

	_, err := ch.QueueDeclare(
		queueName, // 队列名称
		durable,   // 持久化
		false,     // 自动删除
		false,     // 独占
		false,     // 非阻塞
		nil,       // 参数
	)
	if err != nil {
		return fmt.Errorf("声明队列失败: %w", err)
	}

	r.queueMap[queueName] = true
	r.log.Info().Str("queue", queueName).Msg("已确保队列存在")
	return nil
}

// BindQueue 绑定队列到exchange
func (r *RabbitMQ) BindQueue(queueName, exchangeName, routingKey string) error {
	bindingKey := fmt.Sprintf("%s:%s:%s", exchangeName, queueName, routingKey)

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.bindingMap[bindingKey] {
		return nil
	}

	ch := r.getChannel()
	if ch == nil {
		return fmt.Errorf("无法获取RabbitMQ通道")
	}
	defer r.putChannel(ch)

	if err := ch.QueueBind(queueName, routingKey, exchangeName, false, nil); err != nil {
		return fmt.Errorf("绑定队列到exchange失败: %w", err)
	}

	r.bindingMap[bindingKey] = true
	r.log.Info().Str("queue", queueName).Str("exchange", exchangeName).Str("routing_key", routingKey).Msg("已绑定队列")
	return nil
}

// PublishMessage 发布消息到exchange
func (r *RabbitMQ) PublishMessage(ctx context.Context, exchangeName, routingKey string, message []byte, persistent bool) error {
	r.publishMutex.Lock()
	defer r.publishMutex.Unlock()

	ch := r.getChannel()
	if ch == nil {
		return fmt.Errorf("无法获取RabbitMQ通道")
	}
	defer r.putChannel(ch)

	deliveryMode := amqp.Transient
	if persistent {
		deliveryMode = amqp.Persistent
	}

	return ch.PublishWithContext(
		ctx,
		exchangeName,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			DeliveryMode: deliveryMode,
			ContentType:  "application/json",
			Body:         message,
			Timestamp:    time.Now(),
		},
	)
}
