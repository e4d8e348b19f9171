package local

// vocabulary is the fixed word list of the offline model: frequent
// English words plus identifiers common in source code and technical
// prose. Words outside this list embed to zero.
var vocabulary = []string{
	// Common English
	"the", "a", "an", "and", "or", "not", "is", "are", "was", "were",
	"be", "been", "have", "has", "had", "do", "does", "did", "will",
	"would", "can", "could", "should", "may", "might", "must", "shall",
	"to", "of", "in", "on", "at", "by", "for", "with", "about", "from",
	"into", "over", "under", "between", "through", "during", "before",
	"after", "above", "below", "up", "down", "out", "off", "again",
	"this", "that", "these", "those", "it", "its", "they", "them",
	"their", "we", "our", "you", "your", "he", "she", "his", "her",
	"what", "which", "who", "when", "where", "why", "how", "all", "each",
	"every", "both", "few", "more", "most", "other", "some", "such",
	"only", "same", "so", "than", "too", "very", "just", "also", "then",
	"once", "here", "there", "any", "because", "while", "if", "else",
	"new", "old", "first", "last", "long", "short", "great", "small",
	"large", "good", "bad", "high", "low", "own", "big", "little",
	"people", "time", "year", "day", "way", "thing", "man", "woman",
	"world", "life", "hand", "part", "place", "work", "week", "case",
	"point", "number", "group", "fact", "house", "water", "food",
	"apple", "apples", "fruit", "fruits", "orange", "oranges", "pear",
	"car", "cars", "vehicle", "vehicles", "road", "city", "country",
	"animal", "dog", "cat", "bird", "tree", "plant", "sun", "moon",
	// Technical / source-code identifiers
	"func", "function", "class", "struct", "enum", "interface", "type",
	"return", "var", "let", "const", "import", "package", "module",
	"public", "private", "static", "void", "int", "float", "double",
	"string", "bool", "true", "false", "nil", "null", "none", "error",
	"err", "test", "main", "init", "get", "set", "add", "remove",
	"delete", "update", "create", "read", "write", "open", "close",
	"start", "stop", "run", "call", "make", "build", "parse", "print",
	"log", "debug", "info", "warn", "fatal", "panic", "index", "key",
	"value", "map", "list", "array", "slice", "vector", "queue", "stack",
	"node", "heap", "graph", "search", "sort", "filter", "match",
	"query", "result", "request", "response", "client", "server",
	"config", "option", "default", "file", "path", "name", "data",
	"byte", "bytes", "buffer", "stream", "channel", "thread", "process",
	"lock", "mutex", "sync", "async", "wait", "signal", "context",
	"cache", "store", "database", "table", "row", "column", "field",
	"record", "document", "text", "word", "line", "token", "chunk",
	"embed", "embedding", "similarity", "cosine", "rank", "score",
}
