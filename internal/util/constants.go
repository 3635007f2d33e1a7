package util

const (
	DateFormat = "2006-01-02"
	TimeFormat = "2006-01-02 15:04:05"
)

const (
	StorageLocal = "local"
	StorageMinio = "minio"
	StorageOSS   = "oss"
)

const (
	MimeAudioMPEG   = "audio/mpeg"
	MimeOctetStream = "application/octet-stream"
)

// 分页
const (
	DefaultPageSize = 10
	MaxPageSize     = 50
)

// 学习者身份
const (
	LearnerHeader     = "X-Learner-ID"
	LearnerUserPrefix = "user:"
	LearnerAnonPrefix = "anon:"
)
