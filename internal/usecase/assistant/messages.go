package assistant

const (
	minimumInputMessage = "Не удалось подготовить документ: сервис генерации недоступен, а данных для черновика пока нет.\n\n" +
		"Опишите процесс хотя бы в таком виде:\n" +
		"- **Цели**: что должен улучшить процесс;\n" +
		"- **Роли**: кто в нем участвует;\n" +
		"- **Входы и выходы**: что поступает на вход и что получается в результате.\n\n" +
		"Например: «Цели - ускорить обработку платежей; Роли - оператор, клиент; Входы - заявка; Выходы - платежное поручение»."

	nothingMissingMessage = "Все ключевые разделы уже заполнены. Напишите «создай документ», и я подготовлю его."

	exportFailedNote = "\n\n_Не удалось сформировать файлы для скачивания, документ доступен в тексте сообщения._"
)
