package service

import "context"

// ILLMProvider текстовая модель: системная инструкция + одно сообщение -> ответ
type ILLMProvider interface {
	Complete(ctx context.Context, system, user string) (string, error)
	Name() string
}
