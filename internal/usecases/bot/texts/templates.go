package texts

import (
	"fmt"
	"strings"
)

const (
	ButtonOpenApp      = "🚀 Открыть SpaceGrow"
	ButtonDiagnostics  = "📊 Пройти диагностику"
	ButtonFirstRemind  = "🛠 Пройти бесплатную диагностику"
	ButtonSecondRemind = "🚀 Запустить SpaceGrowth"
)

const (
	startGreeting = "Привет, %s! 👋\n\n"
	startBody     = "Я — Илья Бормотов, IT-интегратор и архитектор автоматизированных интеллектуальных цепочек продаж.\n\n" +
		"Нажми на кнопку ниже, чтобы открыть мой сайт и узнать больше о моих услугах:\n" +
		"• Диагностика воронки продаж\n" +
		"• Создание автоматизированных систем\n" +
		"• Интеграция всех элементов в единую экосистему\n\n" +
		"Или напиши мне в личку: @ilyaborm"

	Help = "📋 Доступные команды:\n\n" +
		"/start - Начать работу с ботом\n" +
		"/help - Показать эту справку\n" +
		"/site - Открыть сайт SpaceGrow\n" +
		"/diagnostics - Пройти диагностику воронки\n\n" +
		"💬 Контакты:\n" +
		"Telegram: @ilyaborm\n" +
		"Канал: @SoulGuideIT\n" +
		"Email: bormotovilya@gmail.com"

	Site = "Нажми на кнопку, чтобы открыть SpaceGrow IT-Service:"

	Diagnostics = "Пройди бесплатную диагностику воронки продаж (21 вопрос) и получи наглядную картину:\n" +
		"• Где деньги теряются\n" +
		"• Где система уже работает хорошо\n\n" +
		"Нажми на кнопку, чтобы начать:"

	unknownCommand = "Неизвестная команда /%s. Список команд: /help"

	Greeting = "Привет! 👋\n\n" +
		"Используй команду /start, чтобы открыть мой сайт и узнать больше о моих услугах."
	Services = "Я создаю автоматизированные интеллектуальные цепочки продаж для онлайн-школ.\n\n" +
		"Открой сайт, чтобы узнать подробнее:"
	Contacts = "📞 Контакты:\n\n" +
		"Telegram: @ilyaborm\n" +
		"Канал: @SoulGuideIT\n" +
		"Email: bormotovilya@gmail.com\n" +
		"Телефон: +7 (999) 123-77-88"
	Fallback = "Не совсем понял вопрос. Открой мой сайт, там есть вся информация и чат-бот, который ответит на вопросы!"

	DiagnosticsSaved = "✅ Результаты диагностики сохранены. Спасибо!\n\n" +
		"Скоро пришлю разбор и следующие шаги."

	FirstReminder = "Ваша система готова к анализу 🔍\n\n" +
		"Напоминаю, что это бесплатный этап, который занимает всего 5 минут. " +
		"За это время вы обнаружите «протечки» прибыли и поймете, как вырасти до 1-2 млн ₽.\n\n" +
		"Начните сейчас!"
	SecondReminder = "Вопрос архитектуры ⚙️\n\n" +
		"Оставить всё как есть — это тоже стратегия. Но если цель — масштаб, " +
		"систему нужно пересобрать. Бесплатная диагностика еще доступна по ссылке:"
)

// Ключевые слова свободного текста, проверяются по порядку
var (
	GreetingWords = []string{"привет", "здравствуй", "добрый день", "добрый вечер"}
	ServiceWords  = []string{"услуги", "что делаешь", "чем занимаешься"}
	ContactWords  = []string{"контакт", "связаться", "написать"}
)

func FormatStart(firstName string) string {
	if firstName == "" {
		return startBody
	}
	return fmt.Sprintf(startGreeting, firstName) + startBody
}

func FormatUnknownCommand(command string) string {
	return fmt.Sprintf(unknownCommand, command)
}

// ContainsAny текст содержит хотя бы одно из слов (без учёта регистра)
func ContainsAny(text string, words []string) bool {
	lower := strings.ToLower(text)
	for _, w := range words {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}
