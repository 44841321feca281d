// Package service 包含了应用的业务逻辑层。
package service

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"know-law-go/internal/model"
)

// 应答语言标识。输入含阿拉伯文字符时判定为 ar，否则为 en。
const (
	LocaleArabic  = "ar"
	LocaleEnglish = "en"
)

// DetectLocale 通过文字系统判断输入语言：
// 出现阿拉伯文区段的码点即判定为阿拉伯语。
func DetectLocale(text string) string {
	for _, r := range text {
		if unicode.Is(unicode.Arabic, r) {
			return LocaleArabic
		}
	}
	return LocaleEnglish
}

// ReplyRequest 是一次应答生成的输入。
type ReplyRequest struct {
	// Message 是用户本轮输入，可能为空（仅附件的情况）。
	Message string
	// Files 是本轮附件的元数据；生成器不读取文件内容。
	Files []model.FileInfo
	// History 是同一会话的尾部历史轮次，按时间升序。
	History []model.Message
}

// ResponseStrategy 是应答生成策略的统一接口。
// 静态策略基于固定的关键词表；委托策略调用外部补全能力，
// 失败时回落到静态策略。
type ResponseStrategy interface {
	Generate(ctx context.Context, req ReplyRequest) (string, error)
}

// keywordEntry 是关键词表中的一项。表按切片顺序匹配，
// 首个命中的关键词即胜出（既非字典序也非最长匹配）。
type keywordEntry struct {
	keywords []string
	en       string
	ar       string
}

// 固定的法律话题关键词表。关键词同时覆盖英文与阿拉伯文写法。
var keywordTable = []keywordEntry{
	{
		keywords: []string{"contract", "عقد", "اتفاقية"},
		en:       "A contract is a legally binding agreement between two or more parties. For a contract to be valid it generally requires offer, acceptance, consideration, and the intention to create legal relations. Before signing, review every clause carefully, especially those about termination, penalties, and dispute resolution. If a party breaches the contract, the injured party may claim damages or specific performance.",
		ar:       "العقد هو اتفاق ملزم قانونياً بين طرفين أو أكثر. لكي يكون العقد صحيحاً يجب توفر الإيجاب والقبول والمحل والسبب المشروع وأهلية المتعاقدين. قبل التوقيع، راجع جميع البنود بعناية، خصوصاً ما يتعلق بالإنهاء والغرامات وتسوية النزاعات. وفي حال إخلال أحد الأطراف بالعقد يحق للطرف المتضرر المطالبة بالتعويض أو التنفيذ العيني.",
	},
	{
		keywords: []string{"divorce", "custody", "طلاق", "حضانة"},
		en:       "Divorce proceedings cover the dissolution of marriage, division of assets, alimony, and child custody. Custody decisions prioritize the best interests of the child. Requirements and timelines differ by jurisdiction, and mediation is often required before litigation. Consulting a family-law specialist early helps protect your rights and reduces conflict.",
		ar:       "تشمل إجراءات الطلاق فسخ عقد الزواج وقسمة الممتلكات والنفقة وحضانة الأطفال. وتُبنى قرارات الحضانة على مصلحة الطفل الفضلى. تختلف الشروط والمدد من دولة إلى أخرى، وغالباً ما يُشترط الصلح أو الوساطة قبل اللجوء إلى القضاء. استشارة محامٍ مختص في قضايا الأسرة مبكراً تحمي حقوقك وتقلل الخلافات.",
	},
	{
		keywords: []string{"labor", "employment", "salary", "dismissal", "عمل", "راتب", "فصل تعسفي"},
		en:       "Labor law governs the relationship between employers and employees: working hours, wages, leave, termination, and end-of-service benefits. If you believe you were dismissed unfairly or your wages were withheld, document everything and file a complaint with the labor authority within the statutory deadline. Many labor disputes must go through an administrative settlement stage before reaching court.",
		ar:       "ينظم قانون العمل العلاقة بين صاحب العمل والعامل: ساعات العمل والأجور والإجازات وإنهاء الخدمة ومكافأة نهاية الخدمة. إذا كنت تعتقد أنك فُصلت تعسفياً أو حُجب راتبك، فوثّق كل شيء وقدّم شكوى إلى الجهة المختصة بالعمل خلال المدة النظامية. كثير من منازعات العمل تمر بمرحلة تسوية ودية قبل إحالتها إلى المحكمة.",
	},
	{
		keywords: []string{"rent", "lease", "tenant", "landlord", "إيجار", "مستأجر", "مؤجر"},
		en:       "Tenancy law regulates the rights and duties of landlords and tenants: rent increases, maintenance obligations, eviction grounds, and deposit refunds. Always insist on a written lease and keep receipts of every payment. A landlord usually cannot evict a tenant without a lawful ground and proper notice.",
		ar:       "ينظم قانون الإيجار حقوق وواجبات المؤجر والمستأجر: الزيادات الإيجارية والتزامات الصيانة وأسباب الإخلاء واسترداد التأمين. احرص دائماً على عقد إيجار مكتوب واحتفظ بإيصالات كل دفعة. ولا يجوز للمؤجر في الغالب إخلاء المستأجر دون سبب مشروع وإنذار صحيح.",
	},
	{
		keywords: []string{"inheritance", "will", "estate", "ميراث", "وصية", "تركة"},
		en:       "Inheritance law determines how a deceased person's estate is distributed among heirs, and how wills are drafted and executed. Shares can depend on the family structure and the applicable personal-status law. Preparing a valid will and documenting assets in advance greatly simplifies matters for your heirs.",
		ar:       "يحدد نظام المواريث كيفية توزيع تركة المتوفى على الورثة، وكيفية كتابة الوصية وتنفيذها. وتختلف الأنصبة بحسب تركيبة الأسرة وقانون الأحوال الشخصية الواجب التطبيق. إن إعداد وصية صحيحة وتوثيق الأصول مسبقاً يسهّل الأمر كثيراً على الورثة.",
	},
	{
		keywords: []string{"company", "business", "startup", "شركة", "سجل تجاري"},
		en:       "Setting up a business involves choosing a legal form (sole establishment, LLC, joint-stock), registering the trade name, obtaining licenses, and drafting the articles of association. The legal form affects your personal liability and tax treatment, so choose it based on the size and risk of the activity.",
		ar:       "يتطلب تأسيس نشاط تجاري اختيار الشكل القانوني (مؤسسة فردية، شركة ذات مسؤولية محدودة، شركة مساهمة)، وتسجيل الاسم التجاري، واستخراج التراخيص، وصياغة عقد التأسيس. يؤثر الشكل القانوني على مسؤوليتك الشخصية والمعاملة الضريبية، فاختره بما يناسب حجم النشاط ومخاطره.",
	},
	{
		keywords: []string{"crime", "criminal", "police", "جريمة", "جنائي", "بلاغ"},
		en:       "In criminal matters you have the right to remain silent and the right to a lawyer from the first interrogation. Do not sign statements you have not read and understood. If you are a victim, file a report promptly and preserve all evidence; delays can weaken the case.",
		ar:       "في المسائل الجنائية لك الحق في التزام الصمت والحق في الاستعانة بمحامٍ منذ أول استجواب. لا توقّع على أقوال لم تقرأها وتفهمها. وإذا كنت مجنياً عليه فبادر بتقديم البلاغ فوراً واحتفظ بجميع الأدلة، فالتأخير قد يُضعف القضية.",
	},
	{
		keywords: []string{"traffic", "accident", "fine", "مرور", "حادث", "مخالفة"},
		en:       "After a traffic accident: secure the scene, call the police, photograph the vehicles and surroundings, and exchange insurance details. Do not admit fault at the scene; liability is determined by the official report. Traffic fines can usually be contested within a fixed objection period.",
		ar:       "بعد وقوع حادث مروري: أمّن الموقع واتصل بالشرطة وصوّر المركبات والمحيط وتبادل بيانات التأمين. لا تقرّ بالخطأ في الموقع، فالمسؤولية تُحدد بموجب المحضر الرسمي. كما يمكن عادةً الاعتراض على المخالفات المرورية خلال مدة اعتراض محددة.",
	},
}

// intentEntry 是通用意图（问候/感谢/求助）的一项。
type intentEntry struct {
	keywords []string
	en       string
	ar       string
}

var intentTable = []intentEntry{
	{
		keywords: []string{"hello", "hi", "hey", "مرحبا", "السلام", "اهلا", "أهلا"},
		en:       "Hello! I'm the Know Law assistant. Ask me about contracts, labor law, tenancy, family matters, or any other legal topic, and I'll do my best to point you in the right direction.",
		ar:       "مرحباً! أنا مساعد «اعرف القانون». اسألني عن العقود أو قانون العمل أو الإيجار أو قضايا الأسرة أو أي موضوع قانوني آخر وسأبذل جهدي لتوجيهك الوجهة الصحيحة.",
	},
	{
		keywords: []string{"thank", "thanks", "شكرا", "شكراً"},
		en:       "You're welcome! If you have any other legal question, I'm here to help.",
		ar:       "على الرحب والسعة! إذا كان لديك أي سؤال قانوني آخر فأنا في الخدمة.",
	},
	{
		keywords: []string{"help", "مساعدة", "ساعدني"},
		en:       "I can explain common legal topics such as contracts, employment disputes, tenancy, inheritance, and traffic matters, and I can help you book a consultation with a lawyer from our directory.",
		ar:       "يمكنني شرح الموضوعات القانونية الشائعة مثل العقود ومنازعات العمل والإيجار والمواريث وقضايا المرور، كما يمكنني مساعدتك في حجز استشارة مع محامٍ من دليلنا.",
	},
}

// 通用兜底应答。
const (
	fallbackEN = "That's an interesting legal question. The answer can depend heavily on the details of your situation and the applicable jurisdiction. Could you describe the facts in a bit more detail — what happened, when, and who is involved? You can also book a consultation with one of our lawyers for a definitive answer."
	fallbackAR = "سؤال قانوني مهم. قد تختلف الإجابة كثيراً بحسب تفاصيل حالتك والقانون الواجب التطبيق. هل يمكنك وصف الوقائع بمزيد من التفصيل — ماذا حدث ومتى ومن الأطراف المعنية؟ يمكنك أيضاً حجز استشارة مع أحد محامينا للحصول على إجابة قاطعة."
)

// StaticStrategy 是基于固定关键词表的本地应答策略，永不失败。
type StaticStrategy struct{}

// NewStaticStrategy 创建一个静态应答策略。
func NewStaticStrategy() *StaticStrategy {
	return &StaticStrategy{}
}

// Generate 产生一条与输入语言一致的应答。
// 匹配顺序：附件确认 → 话题关键词表 → 通用意图 → 兜底段落。
func (s *StaticStrategy) Generate(ctx context.Context, req ReplyRequest) (string, error) {
	locale := DetectLocale(req.Message)

	// 附件只确认收到并追问，绝不分析内容
	if len(req.Files) > 0 {
		return s.acknowledgeFiles(locale, req.Files), nil
	}

	lowered := strings.ToLower(req.Message)

	for _, entry := range keywordTable {
		for _, kw := range entry.keywords {
			if strings.Contains(lowered, kw) {
				return entry.pick(locale), nil
			}
		}
	}

	for _, entry := range intentTable {
		for _, kw := range entry.keywords {
			if strings.Contains(lowered, kw) {
				if locale == LocaleArabic {
					return entry.ar, nil
				}
				return entry.en, nil
			}
		}
	}

	if locale == LocaleArabic {
		return fallbackAR, nil
	}
	return fallbackEN, nil
}

func (e keywordEntry) pick(locale string) string {
	if locale == LocaleArabic {
		return e.ar
	}
	return e.en
}

// acknowledgeFiles 生成附件确认与追问文本。
func (s *StaticStrategy) acknowledgeFiles(locale string, files []model.FileInfo) string {
	names := make([]string, 0, len(files))
	for _, f := range files {
		names = append(names, f.Name)
	}
	list := strings.Join(names, "، ")
	if locale != LocaleArabic {
		list = strings.Join(names, ", ")
	}

	if locale == LocaleArabic {
		return fmt.Sprintf("استلمت %d ملف(ات): %s. لا أستطيع تحليل محتوى الملفات، لكن يسعدني مساعدتك بناءً على وصفك. ما الموضوع القانوني الذي تتعلق به هذه المستندات، وما الذي تريد معرفته تحديداً؟", len(files), list)
	}
	return fmt.Sprintf("I've received %d file(s): %s. I can't analyze file contents, but I'm happy to help based on your description. What legal matter do these documents relate to, and what exactly would you like to know?", len(files), list)
}
