package domain

// MenuItem пункт меню сайта
type MenuItem struct {
	ID           int      `json:"id"`
	Image        string   `json:"image"`
	Title        string   `json:"title"`
	SidebarTitle string   `json:"sidebarTitle"`
	SidebarItems []string `json:"sidebarItems"`
}

// Menu статичное меню главной страницы
func Menu() []MenuItem {
	return []MenuItem{
		{
			ID:           1,
			Image:        "/images/item1.jpg",
			SidebarTitle: "Что я делаю",
			SidebarItems: []string{
				"Автоматизированные цепочки продаж",
				"Сайты и лендинги",
				"Воронки продаж",
				"Обучающие курсы (боты/GetCourse)",
				"Интеграция всех элементов",
			},
		},
		{
			ID:           2,
			Image:        "/images/item2.jpg",
			SidebarTitle: "Портфолио",
			SidebarItems: []string{
				"Реализованные цепочки продаж",
				"Кейсы онлайн-обучения",
				"Воронки с результатами",
				"Интегрированные системы",
			},
		},
		{
			ID:           3,
			Image:        "/images/item3.jpg",
			Title:        "Обо мне",
			SidebarTitle: "Отзывы",
			SidebarItems: []string{
				"Клиенты о работе",
				"Видео-отзывы",
				"Кейсы до/после",
				"Результаты проектов",
			},
		},
		{
			ID:           4,
			Image:        "/images/item4.jpg",
			SidebarTitle: "Контакты",
			SidebarItems: []string{
				"Telegram: @ilyaborm",
				"Канал",
				"Мой сайт",
				"VK",
			},
		},
		{
			ID:           5,
			Image:        "/images/item5.jpg",
			Title:        "Бонус",
			SidebarTitle: "Обо мне",
			SidebarItems: []string{
				"Архитектор цепочек продаж",
				"Мой подход",
				"Философия работы",
				"Почему это работает",
			},
		},
		{
			ID:           6,
			Image:        "/images/item6.jpg",
			Title:        "Как это работает",
			SidebarTitle: "Технологии",
			SidebarItems: []string{
				"Автоматизация процессов",
				"AI-интеграции",
				"Telegram-боты",
				"Платформы обучения",
				"Аналитика и оптимизация",
			},
		},
	}
}
