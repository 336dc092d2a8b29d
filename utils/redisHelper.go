package utils

import (
	"context"
	"strings"
	"sync"

	"bitbucket.org/andeansoft/carniceria_backend/config"
)

var mutex sync.Mutex

// GetSequence hands out the next document number for T (sales, orders,
// cash sessions). The counter lives in Redis; on a cold cache it is seeded
// from MAX(sequence_no) in the database and re-checked for uniqueness so a
// flushed Redis never produces a duplicate number.
func GetSequence[T any](ctx context.Context) (int64, error) {
	var model T
	_ = model
	mutex.Lock()
	defer mutex.Unlock()

	cacheKey := strings.ToLower(GetTypeName[T]()) + "_seq"
	var seqNo int64
	var err error
	db := config.GetDB()

	for {
		seqNo, err = config.GetRedisCounter(ctx, cacheKey)
		if err != nil {
			return 0, err
		}
		// if not found in redis, get from db
		if seqNo <= 1 {
			var dbSeq *int64
			if err := db.WithContext(ctx).Model(&model).Select("max(sequence_no)").
				Scan(&dbSeq).Error; err != nil {
				return 0, err
			}
			if dbSeq == nil {
				seqNo = 0
			} else {
				seqNo = *dbSeq
			}
			seqNo++
			if err := config.SetRedisObject(cacheKey, &seqNo, 0); err != nil {
				return 0, err
			}
		}
		// check if sequence number exists in db
		err = ValidateUnique[T](ctx, "sequence_no", seqNo, 0)
		if err == nil {
			break
		}
	}

	return seqNo, nil
}
