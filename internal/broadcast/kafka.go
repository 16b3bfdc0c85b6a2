package broadcast

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/SlpAus/usg-voting-backend/internal/platform/config"
	"github.com/segmentio/kafka-go"
)

// kafkaWriter 是可选的Kafka外发通道，供校外的结果归档/大屏系统消费。
// 未启用时为nil，所有发送函数直接返回。
var kafkaWriter *kafka.Writer

// InitKafka 根据配置初始化Kafka写入器。
func InitKafka(cfg config.KafkaConfig) {
	if !cfg.Enabled {
		return
	}
	kafkaWriter = &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		Async:        true, // 广播是尽力而为的，不能阻塞提交路径
	}
	fmt.Printf("Kafka事件外发已启用，Topic: %s\n", cfg.Topic)
}

// CloseKafka 关闭Kafka写入器，在停机时调用。
func CloseKafka() {
	if kafkaWriter == nil {
		return
	}
	if err := kafkaWriter.Close(); err != nil {
		fmt.Printf("警告: 关闭Kafka写入器失败: %v\n", err)
	}
	kafkaWriter = nil
}

func publishTallyToKafka(events []TallyEvent) {
	if kafkaWriter == nil {
		return
	}

	messages := make([]kafka.Message, 0, len(events))
	for _, ev := range events {
		payload, err := json.Marshal(ev)
		if err != nil {
			continue
		}
		messages = append(messages, kafka.Message{
			// 按候选人ID分区，同一候选人的事件保持分区内有序
			Key:   []byte(ev.CandidateID),
			Value: payload,
			Time:  ev.At,
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := kafkaWriter.WriteMessages(ctx, messages...); err != nil {
		fmt.Printf("警告: 发送计票事件到Kafka失败: %v\n", err)
	}
}

func publishStatusToKafka(ev StatusEvent) {
	if kafkaWriter == nil {
		return
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	err = kafkaWriter.WriteMessages(ctx, kafka.Message{
		Key:   []byte(fmt.Sprintf("election-%d", ev.ElectionID)),
		Value: payload,
		Time:  ev.At,
	})
	if err != nil {
		fmt.Printf("警告: 发送状态事件到Kafka失败: %v\n", err)
	}
}
