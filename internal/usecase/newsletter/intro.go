package newsletter

import (
	"context"

	"byte-highlight/internal/domain/entity"
)

// IntroWriter writes the short editorial paragraph that opens the weekly digest.
type IntroWriter interface {
	WriteIntro(ctx context.Context, articles []*entity.Article) (string, error)
}

// UnsubscribeIssuer signs the token embedded in unsubscribe links.
type UnsubscribeIssuer interface {
	IssueUnsubscribe(email string) (string, error)
}

// DispatchObserver is told about every dispatch after it is recorded.
type DispatchObserver interface {
	DispatchRecorded(ctx context.Context, log *entity.SendLog)
}

// Observers fans a dispatch record out to several observers in order.
type Observers []DispatchObserver

func (o Observers) DispatchRecorded(ctx context.Context, log *entity.SendLog) {
	for _, obs := range o {
		if obs != nil {
			obs.DispatchRecorded(ctx, log)
		}
	}
}
