package repository

import (
	"testing"

	"fellowship_backend/internal/model"
)

func TestParticipantResultColumns(t *testing.T) {
	// 终局行由内存态合成，除主键与比分外全部是零值
	row := &model.LiveQuizParticipant{
		BaseModel:    model.BaseModel{ID: 11},
		Score:        150,
		CorrectCount: 2,
		Streak:       1,
		FinalRank:    1,
	}
	columns := participantResultColumns(row)

	want := map[string]interface{}{
		"score":         150,
		"correct_count": 2,
		"streak":        1,
		"final_rank":    1,
	}
	if len(columns) != len(want) {
		t.Fatalf("update touches %d columns, want %d", len(columns), len(want))
	}
	for key, value := range want {
		got, ok := columns[key]
		if !ok {
			t.Fatalf("column %q missing from update set", key)
		}
		if got != value {
			t.Fatalf("column %q = %v, want %v", key, got, value)
		}
	}

	// 零值的建档时间绝不能进更新集，否则已存行的时间戳会被抹掉
	for _, forbidden := range []string{"created_at", "updated_at", "deleted_at", "session_id", "user_id", "display_name"} {
		if _, ok := columns[forbidden]; ok {
			t.Fatalf("column %q must not be in the final-rank update set", forbidden)
		}
	}
}
