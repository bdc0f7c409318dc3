package bot

import (
	"context"
	"fmt"
	"html"

	"github.com/rubiojr/kashif/pkg/callback"
	"github.com/rubiojr/kashif/pkg/storage"
)

const welcomeTemplate = `<b>مرحبا %s!
أنا بوت كاشف أحاديث الشيعة، في قاعدة بياناتي %d رواية. تستطيع إضافة أي رواية لقاعدة بياناتي 🔍</b>

<i>الكتب في قاعدة البيانات:</i>
- كتاب الكافي للكليني مع التصحيح من مرآة العقول للمجلسي
- عيون أخبار الرضا للصدوق
- نهج البلاغة
- الخصال للصدوق
- الأمالي للصدوق والأمالي للمفيد
- التوحيد للصدوق
- كامل الزيارات لابن قولويه القمي
- الغيبة للنعماني والغيبة للطوسي
- معاني الأخبار للصدوق
- معجم الأحاديث المعتبرة لمحمد آصف محسني

<b>طريقة الاستخدام:</b>
<code>شيعة [جزء من النص]</code>

<b>مثال:</b>
<code>شيعة باهتوهم</code>

يمكنك أيضاً إضافة حديث جديد باستخدام الأمر /addhadith أو الزر أدناه.`

const helpTemplate = `<b>مساعدة وإحصائيات بوت الأحاديث</b>

📊 <b>الإحصائيات:</b>
- عدد الأحاديث في قاعدة البيانات: %d
- إجمالي عمليات البحث: %d
- عدد المستخدمين : %d

🔍 <b>كيفية البحث:</b>
أرسل رسالة تبدأ بـ <code>شيعة</code> أو <code>شيعه</code> ثم مسافة ثم الكلمة أو الجملة التي تريد البحث عنها.
مثال: <code>شيعه باهتوهم</code>

➕ <b>إضافة حديث:</b>
استخدم الأمر /addhadith أو النص "اضافة حديث" لبدء عملية إضافة حديث جديد للمراجعة.`

// Start greets the user with usage instructions and shortcuts.
func (e *Engine) Start(ctx context.Context, chatID int64, user User) error {
	e.touch(ctx, user, storage.StatStartUsage)

	total, err := e.store.CountDistinct(ctx)
	if err != nil {
		logger.Warnf("counting documents: %v", err)
	}

	var buttons [][]Button
	if e.opts.BotUsername != "" {
		buttons = append(buttons, []Button{{
			Text: textAddToGroup,
			URL:  fmt.Sprintf("https://t.me/%s?startgroup=true", e.opts.BotUsername),
		}})
	}
	buttons = append(buttons, []Button{{Text: textAddButton, Data: callback.Add().MustEncode()}})
	if e.opts.ChannelURL != "" {
		buttons = append(buttons, []Button{{Text: textChannel, URL: e.opts.ChannelURL}})
	}

	_, err = e.send(ctx, chatID, Message{
		Text:    fmt.Sprintf(welcomeTemplate, html.EscapeString(user.FirstName), total),
		HTML:    true,
		Buttons: buttons,
	})
	return err
}

// Help shows usage statistics.
func (e *Engine) Help(ctx context.Context, chatID int64, user User) error {
	e.touch(ctx, user, "")

	total, err := e.store.CountDistinct(ctx)
	if err != nil {
		logger.Warnf("counting documents: %v", err)
	}
	searches, err := e.store.Stat(ctx, storage.StatSearchCount)
	if err != nil {
		logger.Warnf("reading search count: %v", err)
	}
	users, err := e.store.Stat(ctx, storage.StatUserCount)
	if err != nil {
		logger.Warnf("reading user count: %v", err)
	}

	msg := Message{
		Text:           fmt.Sprintf(helpTemplate, total, searches, users),
		HTML:           true,
		DisablePreview: true,
	}
	if e.opts.DeveloperURL != "" {
		label := " المطور"
		if e.opts.DeveloperName != "" {
			label += ": " + e.opts.DeveloperName
		}
		msg.Buttons = [][]Button{{{Text: label, URL: e.opts.DeveloperURL}}}
	}

	_, err = e.send(ctx, chatID, msg)
	return err
}
