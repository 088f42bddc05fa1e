package llm

import (
	"context"
	"strings"
)

// Mock заготовленные ответы по ключевым словам, для локального запуска без ключа
type Mock struct {
	answers []cannedAnswer
}

type cannedAnswer struct {
	keyword string
	text    string
}

const contactsAnswer = "Со мной можно связаться:\n- Telegram: @ilyaborm\n- Канал: @SoulGuideIT\n- Email: bormotovilya@gmail.com"

const defaultAnswer = `Спасибо за вопрос! Я Илья Бормотов, IT-интегратор и архитектор автоматизированных интеллектуальных цепочек продаж.

Для более подробного ответа напишите мне в Telegram: @ilyaborm

Также предлагаю бесплатную диагностику воронки или мини-аудит бизнес-процессов.`

func NewMock() *Mock {
	// порядок важен: первое вхождение выигрывает
	return &Mock{answers: []cannedAnswer{
		{"привет", "Привет! Я Илья Бормотов, IT-интегратор и архитектор автоматизированных интеллектуальных цепочек продаж. Чем могу помочь?"},
		{"здравствуй", "Здравствуйте! Я Илья Бормотов. Готов ответить на ваши вопросы о моих услугах."},
		{"как дела", "Отлично, спасибо! Готов помочь вам с вопросами по автоматизации продаж и созданию воронок."},
		{"что ты делаешь", "Я создаю автоматизированные цепочки продаж для онлайн-школ: сайты, лендинги, воронки продаж, обучающие курсы и интеграцию всех элементов в единую систему."},
		{"чем занимаешься", "Я IT-интегратор с 19+ годами опыта. Специализируюсь на автоматизированных цепочках продаж для онлайн-школ и экспертов."},
		{"прогрев", "Прогрев - это этап воронки, где мы даём ценность аудитории, обучаем и создаём доверие перед предложением."},
		{"контакты", contactsAnswer},
		{"как связаться", contactsAnswer},
		{"telegram", "Мой Telegram: @ilyaborm. Также есть канал: @SoulGuideIT"},
		{"сколько лет опыта", "У меня 19+ лет опыта в IT, из них 15 лет в Enterprise."},
		{"опыт", "У меня 19+ лет опыта в IT, из них 15 лет в Enterprise. С 2023 года фокус на Telegram-экосистеме и автоматизации продаж."},
		{"стоимость", "Стоимость зависит от проекта. Предлагаю бесплатную диагностику воронки или мини-аудит бизнес-процессов."},
		{"цена", "Стоимость зависит от проекта. Предлагаю бесплатную диагностику воронки для оценки вашей ситуации."},
		{"бесплатно", "Да, предлагаю бесплатную диагностику воронки: карта проблем, оценка потерь и прогноз точек роста."},
		{"диагностика", "Предлагаю бесплатную диагностику воронки. Она поможет выявить проблемы, оценить потери и найти точки роста."},
	}}
}

func (m *Mock) Name() string { return ProviderMock }

func (m *Mock) Complete(_ context.Context, _ string, user string) (string, error) {
	lower := strings.ToLower(strings.TrimSpace(user))
	for _, a := range m.answers {
		if strings.Contains(lower, a.keyword) {
			return a.text, nil
		}
	}
	return defaultAnswer, nil
}
