package words

// Category names a themed English word list.
type Category string

const (
	CategoryCommon   Category = "common"
	CategoryTech     Category = "tech"
	CategoryAdvanced Category = "advanced"
)

// Language is a practice language preference.
type Language string

const (
	LangEN Language = "EN"
	LangTR Language = "TR"
	LangRU Language = "RU"
)

// Languages lists the supported languages in display order.
var Languages = []Language{LangEN, LangTR, LangRU}

var (
	RaceCategories     = []Category{CategoryCommon, CategoryTech, CategoryAdvanced}
	PracticeCategories = []Category{CategoryCommon, CategoryTech}
)

var commonWords = []string{
	"the", "be", "to", "of", "and", "that", "have", "with",
	"this", "from", "they", "what", "make", "when", "time",
	"about", "there", "think", "which", "people", "year",
	"first", "world", "life", "where", "after", "back",
	"work", "most", "only", "then", "find", "also", "use",
	"give", "day", "want", "because", "any", "these", "need",
	"look", "good", "new", "come", "over", "other", "well",
	"even", "last", "long", "great", "little", "own", "same",
	"another", "right", "place", "while", "help", "talk", "turn",
	"start", "show", "part", "against", "three", "small", "end",
	"put", "home", "read", "hand", "big", "high", "every", "next",
	"few", "old", "leave", "mean", "keep", "let", "begin", "seem",
	"country", "problem", "try", "ask", "play", "run", "move",
	"live", "believe", "hold", "bring", "happen", "write", "provide",
	"sit", "stand", "lose", "pay", "meet", "include", "continue",
	"set", "learn", "change", "lead", "understand", "watch", "follow",
	"stop", "create", "speak", "spend", "grow", "open", "walk", "win",
	"offer", "remember", "love", "consider", "appear", "buy", "wait",
	"serve", "send", "expect", "build", "stay", "fall", "cut", "reach",
	"remain", "suggest", "raise", "pass", "sell", "require", "report",
	"decide", "pull", "return", "explain", "hope", "develop", "carry",
	"break", "receive", "agree", "support", "hit", "produce", "eat",
	"cover", "catch", "draw", "choose", "cause", "point", "listen",
	"realize", "close", "involve", "increase", "represent", "apply",
	"manage", "design", "prepare", "discover", "ensure", "act",
	"affect", "establish", "imagine", "teach", "improve", "maintain",
	"protect", "occur", "identify", "determine", "recognize", "indicate",
	"assume", "enter", "tend", "exist", "achieve", "avoid", "reflect",
	"admit", "suffer", "express", "reveal", "contain", "control", "approach",
}

var techWords = []string{
	"code", "data", "file", "byte", "disk", "port", "link",
	"cloud", "debug", "array", "cache", "class", "input",
	"logic", "query", "stack", "pixel", "virus", "macro",
	"server", "syntax", "system", "output", "memory", "kernel",
	"algorithm", "binary", "compiler", "database", "encryption",
	"firewall", "gateway", "hardware", "internet", "javascript",
	"keyboard", "laptop", "malware", "network", "operating",
	"protocol", "quantum", "router", "software", "terminal",
	"upload", "virtual", "website", "xml", "yaml", "zip",
	"analytics", "backup", "bandwidth", "bitrate", "bluetooth",
	"botnet", "browser", "buffer", "bugfix", "bytecode", "captcha",
	"checksum", "cipher", "codec", "command", "compression", "cookie",
	"daemon", "debugger", "decryption", "digital", "domain", "download",
	"emulator", "ethernet", "firmware", "framework", "frontend",
	"gigabyte", "hashing", "hostname", "hyperlink", "interface",
	"iteration", "keystroke", "latency", "login", "mainframe",
	"megabyte", "metadata", "middleware", "modem", "namespace",
	"packet", "password", "patch", "plugin", "pointer", "python",
	"queue", "reboot", "recovery", "refactor", "registry", "runtime",
	"sandbox", "screenshot", "script", "session", "shell", "silicon",
	"snapshot", "subnet", "superuser", "telemetry", "terabyte", "token",
	"uninstall", "update", "uptime", "username", "utility", "webapp",
	"webserver", "widget", "wireless", "worm",
}

var advancedWords = []string{
	"algorithm", "bandwidth", "compiler", "database", "encryption",
	"framework", "interface", "javascript", "middleware", "protocol",
	"repository", "typescript", "validation", "deployment",
	"abstraction", "asynchronous", "authentication", "authorization",
	"backpropagation", "blockchain", "cryptocurrency", "decentralization",
	"differentiation", "disambiguation", "encapsulation",
	"heterogeneous", "homogeneous", "hyperparameter", "implementation",
	"infrastructure", "interoperability", "localization",
	"microservices", "objectivity", "optimization",
	"parameterization", "personalization", "quantification", "reconciliation",
	"reengineering", "reproducibility", "scalability", "serialization",
	"synchronization", "transformation", "virtualization", "vulnerability",
	"workflow", "xylophone", "yesteryear", "youthfulness", "zealousness",
	"zoological", "zooplankton", "zucchini", "zygomatic", "zymurgy",
}

var turkishWords = []string{
	"ve", "bir", "bu", "da", "ne", "için", "çok", "ben", "ama", "gibi",
	"daha", "sonra", "kadar", "şey", "zaman", "gün", "yıl", "insan",
	"ev", "iş", "su", "yol", "el", "göz", "baş", "kapı", "dünya",
	"hayat", "çocuk", "anne", "baba", "kitap", "okul", "şehir", "deniz",
	"güneş", "ay", "yıldız", "ağaç", "çiçek", "kuş", "kedi", "köpek",
	"ekmek", "yemek", "çay", "kahve", "sabah", "akşam", "gece", "hafta",
	"büyük", "küçük", "güzel", "yeni", "eski", "iyi", "kötü", "hızlı",
	"yavaş", "sıcak", "soğuk", "beyaz", "siyah", "kırmızı", "mavi",
	"yeşil", "sarı", "gelmek", "gitmek", "yapmak", "görmek", "bilmek",
	"istemek", "vermek", "almak", "söylemek", "okumak", "yazmak",
}

var russianWords = []string{
	"и", "в", "не", "на", "я", "быть", "он", "с", "что", "а",
	"по", "это", "она", "этот", "к", "но", "они", "мы", "как", "из",
	"у", "который", "то", "за", "свой", "весь", "год", "от", "так",
	"о", "для", "ты", "же", "все", "тот", "мочь", "вы", "человек",
	"такой", "его", "сказать", "только", "или", "ещё", "бы", "себя",
	"один", "как", "уже", "до", "время", "если", "сам", "когда",
	"другой", "вот", "говорить", "наш", "мой", "знать", "стать",
	"при", "чтобы", "дело", "жизнь", "кто", "первый", "очень", "два",
	"день", "её", "новый", "рука", "даже", "во", "со", "раз", "где",
	"там", "под", "можно", "ну", "какой", "после", "их", "работа",
}
