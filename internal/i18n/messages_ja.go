package i18n

// japaneseMessages holds all Japanese service messages.
var japaneseMessages = map[string]string{
	// Returned when the completion service fails; the one user-visible
	// failure of the pipeline.
	"error.completion": "申し訳ございません。現在回答を生成できません。しばらくしてからもう一度お試しください。",

	// Validation errors surfaced by the HTTP layer.
	"error.question.empty": "ご質問を入力してください。",
	"error.tenant.empty":   "店舗IDが指定されていません。",

	// Escalation notification subject line.
	"escalation.subject": "スタッフ確認が必要な質問が届きました",
}
