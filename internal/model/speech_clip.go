package model

// SpeechClip 语音合成结果缓存，CacheKey = sha256(lang + "\n" + text)
type SpeechClip struct {
	BaseModel
	CacheKey    string `gorm:"size:64;uniqueIndex;not null" json:"cacheKey"`
	Lang        string `gorm:"size:20" json:"lang"`
	Text        string `gorm:"type:text" json:"text"`
	StoragePath string `gorm:"size:255" json:"storagePath"`
	URL         string `gorm:"size:500" json:"url"`
	Size        int64  `json:"size"`
	Chunks      int    `json:"chunks"`
}

func (SpeechClip) TableName() string {
	return "speech_clips"
}
