package model

// ProcessingStatus tracks how far a single source has been consumed. One row
// exists per source identifier; the row is created lazily on the first
// successful partial processing and is never deleted by normal operation.
//
// LastRawTimestamp and LastAvgTimestamp hold canonical stamps (StampLayout);
// the empty string means unset. LastRow is the count of raw records already
// consumed from an append-only source and is meaningless for
// timestamp-filterable sources.
type ProcessingStatus struct {
	SourceID         string `gorm:"column:source_id;primaryKey"`
	LastRawTimestamp string `gorm:"column:last_raw_timestamp"`
	LastAvgTimestamp string `gorm:"column:last_avg_timestamp"`
	LastRow          int64  `gorm:"column:last_row;default:0"`
}

// TableName specifies the table name for ProcessingStatus.
func (ProcessingStatus) TableName() string {
	return "processing_status"
}
