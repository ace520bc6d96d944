// Package i18n renders prompt texts from lookup keys. The flow core is
// locale-agnostic and only ever passes keys here.
package i18n

import "fmt"

type Bundle struct {
	defaultLocale string
	translations  map[string]map[string]string
}

func NewBundle(defaultLocale string) *Bundle {
	if _, ok := translations[defaultLocale]; !ok {
		defaultLocale = "en"
	}
	return &Bundle{defaultLocale: defaultLocale, translations: translations}
}

// Lookup returns the localized text for key, formatted with args. Unknown
// locales fall back to the default locale; unknown keys come back verbatim so
// a missing entry is visible instead of silent.
func (b *Bundle) Lookup(locale, key string, args ...any) string {
	m, ok := b.translations[locale]
	if !ok {
		m = b.translations[b.defaultLocale]
	}
	tmpl, ok := m[key]
	if !ok {
		tmpl, ok = b.translations[b.defaultLocale][key]
		if !ok {
			return key
		}
	}
	if len(args) == 0 {
		return tmpl
	}
	return fmt.Sprintf(tmpl, args...)
}

var translations = map[string]map[string]string{
	"en": {
		"start":             "Hi! I record your expenses.\nSend !add to start entering a transaction, !cancel to abort one.",
		"cancel_approve":    "Canceled. Send !add when you want to enter a new transaction.",
		"cancel_disapprove": "Nothing to cancel.",
		"incorrect_message": "I did not understand that. Send !add to start entering a transaction.",
		"session_reset":     "Something went wrong with your session, so I reset it. Send !add to start over.",

		"transaction_pattern":          "Send a transaction as \"<expense name> <cost>\", for example: Milk 100.50",
		"transaction_incorrect_format": "That does not look like a transaction.\n",
		"transaction_no_expense":       "I have not seen this expense before. Choose its category or add a new one:",
		"transaction_add_new_category": "Send the name of the new category.",
		"transaction_existed_category": "You already have this category, choose a different name.\n",
		"transaction_category_added":   "Category %s added.\n",
		"transaction_expense_added":    "Expense %s added to category %s.\n",
		"transaction_info":             "Check the transaction:\nExpense: %s\nCategory: %s\nCost: %s\nAmount: %d\nDate: %s\nComment: %s",
		"transaction_added":            "Transaction recorded.\n",
		"transaction_canceled":         "Transaction canceled.\n",
		"transaction_confirm_error":    "Please press one of the offered buttons.",
		"transaction_correct":          "What would you like to fix?",

		"transaction_change_expense_name": "Send the corrected expense name.",
		"transaction_change_category":     "Choose another category or add a new one:",
		"transaction_change_cost":         "Send the corrected cost.",
		"transaction_change_amount":       "Send the corrected amount.",
		"transaction_change_created_date": "Send the corrected date as DD.MM.YYYY.",
		"transaction_change_comment":      "Send the new comment.",

		"transaction_incorrect_expense_name":  "The expense name may only contain letters, digits and spaces, under 50 characters.",
		"transaction_incorrect_category_name": "The category name may only contain letters, digits and spaces, under 50 characters.\n",
		"transaction_incorrect_cost":          "The cost must be a number like 100 or 100.50.",
		"transaction_incorrect_amount":        "The amount must be a whole number of digits only.",
		"transaction_incorrect_created_date":  "The date must look like DD.MM.YYYY and be a real calendar date.",
		"transaction_incorrect_comment":       "The comment must be under 50 characters.",

		"button_confirm":          "Confirm",
		"button_correct":          "Correct",
		"button_cancel":           "Cancel",
		"button_add_new_category": "Add new category",
		"button_fix_name":         "Expense name",
		"button_fix_category":     "Category",
		"button_fix_cost":         "Cost",
		"button_fix_amount":       "Amount",
		"button_fix_date":         "Date",
		"button_fix_comment":      "Comment",
	},
	"ru": {
		"start":             "Привет! Я записываю твои расходы.\nОтправь !add чтобы начать ввод транзакции, !cancel чтобы прервать его.",
		"cancel_approve":    "Отменено. Отправь !add когда захочешь ввести новую транзакцию.",
		"cancel_disapprove": "Отменять нечего.",
		"incorrect_message": "Я не понял сообщение. Отправь !add чтобы начать ввод транзакции.",
		"session_reset":     "С сессией что-то пошло не так, я её сбросил. Отправь !add чтобы начать заново.",

		"transaction_pattern":          "Отправь транзакцию в виде \"<название расхода> <стоимость>\", например: Молоко 100.50",
		"transaction_incorrect_format": "Это не похоже на транзакцию.\n",
		"transaction_no_expense":       "Такого расхода я ещё не видел. Выбери его категорию или добавь новую:",
		"transaction_add_new_category": "Отправь название новой категории.",
		"transaction_existed_category": "Такая категория уже есть, выбери другое название.\n",
		"transaction_category_added":   "Категория %s добавлена.\n",
		"transaction_expense_added":    "Расход %s добавлен в категорию %s.\n",
		"transaction_info":             "Проверь транзакцию:\nРасход: %s\nКатегория: %s\nСтоимость: %s\nКоличество: %d\nДата: %s\nКомментарий: %s",
		"transaction_added":            "Транзакция записана.\n",
		"transaction_canceled":         "Транзакция отменена.\n",
		"transaction_confirm_error":    "Пожалуйста, нажми одну из предложенных кнопок.",
		"transaction_correct":          "Что ты хочешь исправить?",

		"transaction_change_expense_name": "Отправь исправленное название расхода.",
		"transaction_change_category":     "Выбери другую категорию или добавь новую:",
		"transaction_change_cost":         "Отправь исправленную стоимость.",
		"transaction_change_amount":       "Отправь исправленное количество.",
		"transaction_change_created_date": "Отправь исправленную дату в виде ДД.ММ.ГГГГ.",
		"transaction_change_comment":      "Отправь новый комментарий.",

		"transaction_incorrect_expense_name":  "Название расхода может содержать только буквы, цифры и пробелы, короче 50 символов.",
		"transaction_incorrect_category_name": "Название категории может содержать только буквы, цифры и пробелы, короче 50 символов.\n",
		"transaction_incorrect_cost":          "Стоимость должна быть числом, например 100 или 100.50.",
		"transaction_incorrect_amount":        "Количество должно быть целым числом из одних цифр.",
		"transaction_incorrect_created_date":  "Дата должна иметь вид ДД.ММ.ГГГГ и существовать в календаре.",
		"transaction_incorrect_comment":       "Комментарий должен быть короче 50 символов.",

		"button_confirm":          "Подтвердить",
		"button_correct":          "Исправить",
		"button_cancel":           "Отменить",
		"button_add_new_category": "Добавить новую категорию",
		"button_fix_name":         "Название расхода",
		"button_fix_category":     "Категория",
		"button_fix_cost":         "Стоимость",
		"button_fix_amount":       "Количество",
		"button_fix_date":         "Дата",
		"button_fix_comment":      "Комментарий",
	},
}
