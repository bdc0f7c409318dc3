package bot

import (
	"fmt"
	"html"
)

const (
	textMoreButton        = "المزيد "
	textPickResult        = " اضغط على زر الحديث لعرضه كاملاً:"
	textGenericError      = "⚠️ عذراً، حدث خطأ غير متوقع."
	textListError         = "⚠️ حدث خطأ أثناء عرض النتائج."
	textDetailMissing     = "⚠️ خطأ: لم يتم العثور على تفاصيل الحديث المحدد في قاعدة البيانات."
	textCompositionFailed = "⚠️ عذراً، هذا الجزء أطول من المسموح به ولا يمكن عرضه."
	textUsage             = "⚠️ يرجى كتابة كلمة البحث بعد 'شيعة' أو 'شيعه'.\nمثال: <code>شيعة علي</code>"

	textAddStart = "أهلاً بك في خدمة إضافة حديث جديد.\n" +
		"الرجاء إرسال <b>اسم الكتاب</b> أولاً.\n\n" +
		"لإلغاء العملية في أي وقت، أرسل /cancel."
	textAskBody        = "شكرًا لك. الآن الرجاء إرسال <b>نص الحديث</b> كاملاً."
	textAskQuality     = "ممتاز. أخيراً، الرجاء إرسال <b> صحة الحديث</b> (إن وجدت، أو اضغط /skip للتخطي)."
	textEmptyGroup     = "لم يتم إرسال اسم الكتاب. الرجاء إرسال اسم الكتاب."
	textEmptyBody      = "لم يتم إرسال نص الحديث. الرجاء إرسال نص الحديث."
	textQualitySkipped = "تم تخطي تصنيف الحديث ."
	textSubmitted      = "شكراً لك، سيتم مراجعة الحديث والموافقة عليه قريباً إن شاء الله."
	textSubmitFailed   = "حدث خطأ أثناء حفظ الحديث للمراجعة. يرجى المحاولة لاحقاً."
	textCancelled      = "تم إلغاء عملية إضافة الرواية."
	textNotOwner       = "ليس لديك الصلاحية للموافقة أو الرفض."
	textNoQuality      = "لم يحدد"

	textAddToGroup = "➕ أضفني إلى مجموعتك"
	textAddButton  = "➕ إضافة حديث"
	textChannel    = "📢 قناة البوت"
	textApprove    = "✅ موافقة"
	textReject     = "❌ رفض"
)

func textNoResults(query string) string {
	return fmt.Sprintf("🤷‍♂️ لم يتم العثور على نتائج لكلمة البحث '<b>%s</b>'.", html.EscapeString(query))
}

func textTooMany(n int, query string) string {
	return fmt.Sprintf("⚠️ تم العثور على %d نتيجة مطابقة لكلمة البحث '<b>%s</b>'. النتائج كثيرة جدًا لعرض المقتطفات. يرجى تحديد بحثك أكثر.",
		n, html.EscapeString(query))
}

func textListHeader(n int, query string) string {
	return fmt.Sprintf("💡 تم العثور على <b>%d</b> نتائج مطابقة للبحث عن '<b>%s</b>':\n\n", n, html.EscapeString(query))
}

func textListTooLong(n int) string {
	return fmt.Sprintf("⚠️ تم العثور على %d نتيجة مطابقة، لكن قائمة المقتطفات طويلة جدًا.", n)
}

func textApproved(id int64, original string) string {
	return fmt.Sprintf("✅ تمت الموافقة على الرواية رقم %d وإضافته بنجاح.\n\n%s", id, original)
}

func textRejected(id int64, original string) string {
	return fmt.Sprintf("❌ تم رفض الطلب رقم %d.\n\n%s", id, original)
}

func textAlreadyProcessed(id int64) string {
	return fmt.Sprintf("لم يتم العثور على الطلب رقم %d (ربما تمت معالجته مسبقاً).", id)
}

func textModerationFailed(id int64) string {
	return fmt.Sprintf("⚠️ حدث خطأ في قاعدة البيانات أثناء معالجة الطلب %d.", id)
}

func textSubmitterApproved(group string) string {
	return fmt.Sprintf("🎉 تمت الموافقة على الحديث الذي أرسلته حول '%s...' وتمت إضافته لقاعدة البيانات!", truncate(group, 30))
}

func textSubmitterRejected(group string) string {
	return fmt.Sprintf("ℹ️ نعتذر، لم تتم الموافقة على الحديث الذي أرسلته حول '%s...' في الوقت الحالي.", truncate(group, 30))
}

// truncate keeps the first n runes of s.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
