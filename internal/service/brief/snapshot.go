package brief

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	apperrors "github.com/darkkaiser/morning-brief/internal/pkg/errors"
	"github.com/darkkaiser/morning-brief/internal/service/provider/news"
	"github.com/darkkaiser/morning-brief/internal/service/provider/summary"
	"github.com/darkkaiser/morning-brief/internal/service/provider/weather"
	applog "github.com/darkkaiser/morning-brief/pkg/log"
)

const snapshotStampLayout = "2006-01-02_1504"

// Snapshot 실행 결과를 JSON 파일로 저장할 때의 형식입니다.
type Snapshot struct {
	RunID            string         `json:"run_id"`
	City             string         `json:"city"`
	GeneratedAt      string         `json:"generated_at"`
	FetchTimeSeconds float64        `json:"fetch_time_seconds"`
	Weather          weather.Report `json:"weather"`
	Local            []news.Article `json:"local"`
	World            []news.Article `json:"world"`
	Banking          summary.Digest `json:"banking"`
}

// NewSnapshot Brief로부터 Snapshot을 만듭니다.
func NewSnapshot(b *Brief) Snapshot {
	return Snapshot{
		RunID:            b.RunID,
		City:             b.City,
		GeneratedAt:      b.GeneratedAt.Format(time.RFC3339),
		FetchTimeSeconds: b.FetchTime.Seconds(),
		Weather:          b.Weather,
		Local:            b.Local,
		World:            b.World,
		Banking:          b.Banking,
	}
}

// SnapshotFilename 스냅샷 파일 이름을 반환합니다. (예: morning_2024-03-01_0700.json)
func SnapshotFilename(t time.Time) string {
	return fmt.Sprintf("morning_%s.json", t.Format(snapshotStampLayout))
}

// WriteSnapshot 브리핑을 dir 아래 JSON 파일로 저장하고 파일 경로를 반환합니다.
//
// 임시 파일에 쓰고 fsync한 뒤 rename하므로, 중간에 실패하더라도 불완전한 파일이 남지 않습니다.
func WriteSnapshot(dir string, b *Brief) (string, error) {
	data, err := json.MarshalIndent(NewSnapshot(b), "", "  ")
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.Internal, "스냅샷 직렬화에 실패했습니다")
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", apperrors.Wrap(err, apperrors.System, fmt.Sprintf("스냅샷 디렉토리를 생성할 수 없습니다: '%s'", dir))
	}

	path := filepath.Join(dir, SnapshotFilename(b.GeneratedAt))
	if err := writeFileAtomic(path, data); err != nil {
		return "", err
	}

	applog.WithComponentAndFields(component, applog.Fields{
		"run_id": b.RunID,
		"path":   path,
		"bytes":  len(data),
	}).Info("스냅샷 저장 완료")

	return path, nil
}

func writeFileAtomic(path string, data []byte) (err error) {
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return apperrors.Wrap(err, apperrors.System, "스냅샷 임시 파일 생성에 실패했습니다")
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return apperrors.Wrap(err, apperrors.System, "스냅샷 파일 쓰기에 실패했습니다")
	}
	if err = tmp.Sync(); err != nil {
		return apperrors.Wrap(err, apperrors.System, "스냅샷 파일 동기화에 실패했습니다")
	}
	if err = tmp.Close(); err != nil {
		return apperrors.Wrap(err, apperrors.System, "스냅샷 파일 닫기에 실패했습니다")
	}
	if err = os.Chmod(tmp.Name(), 0644); err != nil {
		return apperrors.Wrap(err, apperrors.System, "스냅샷 파일 권한 설정에 실패했습니다")
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return apperrors.Wrap(err, apperrors.System, "스냅샷 파일 교체에 실패했습니다")
	}

	// 디렉토리 엔트리까지 디스크에 반영한다. 일부 플랫폼은 디렉토리 fsync를 지원하지 않으므로 실패는 무시한다.
	if d, dirErr := os.Open(dir); dirErr == nil {
		_ = d.Sync()
		_ = d.Close()
	}

	return nil
}
