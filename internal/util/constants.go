package util

const (
	DateFormat = "2006-01-02"
	TimeFormat = "2006-01-02 15:04:05"
)

const (
	StorageLocal = "local"
	StorageMinio = "minio"
)

// 各类活动的默认发放积分，具体数额由触发方决定
const (
	PointsResourceComplete = 100
	PointsQuizPass         = 150
	PointsDiscussionPost   = 50
	PointsDiscussionReply  = 25
)

// 文件上传相关常量
const (
	MimeImage       = "image/"
	MimeOctetStream = "application/octet-stream"
)
