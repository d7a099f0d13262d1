package api

import (
	"net/http"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Message keys are the English text.
const (
	msgInvalidCredentials = "Invalid username or password."
	msgServiceRunning     = "VD Blog API is running"
)

var supportedLanguages = []language.Tag{
	language.English,
	language.SimplifiedChinese,
}

var languageMatcher = language.NewMatcher(supportedLanguages)

func init() {
	zh := language.SimplifiedChinese
	_ = message.SetString(zh, msgInvalidCredentials, "用户名或密码错误")
	_ = message.SetString(zh, msgServiceRunning, "VD Blog API 服务正在运行")
}

// printerFor picks the best supported language from Accept-Language.
func printerFor(r *http.Request) *message.Printer {
	tags, _, _ := language.ParseAcceptLanguage(r.Header.Get("Accept-Language"))
	_, index, _ := languageMatcher.Match(tags...)
	return message.NewPrinter(supportedLanguages[index])
}

func localize(r *http.Request, key string) string {
	return printerFor(r).Sprintf(key)
}
