package errors

//go:generate stringer -type=ErrorType

// ErrorType 에러의 종류를 나타내는 타입입니다.
type ErrorType int

// 에러 타입 상수
const (
	// Unknown 분류되지 않은 에러
	Unknown ErrorType = iota

	// Internal 내부 로직 오류 (버그, 예상하지 못한 패닉 등)
	Internal

	// System 시스템 또는 인프라 오류 (디스크, 네트워크, 캐시 저장소 등)
	System

	// Unauthorized 자격증명 누락 또는 인증 실패 (API 키 미설정, HTTP 401 등)
	Unauthorized

	// Restricted 요금제 또는 호출 한도로 인해 특정 엔드포인트 사용이 제한됨 (HTTP 401/426)
	Restricted

	// InvalidInput 잘못된 입력값 또는 설정값
	InvalidInput

	// NotFound 요청한 리소스를 찾을 수 없음 (존재하지 않는 도시 등)
	NotFound

	// ExecutionFailed 외부 서비스 호출이 거부되거나 실패함 (메일 발송 실패 등)
	ExecutionFailed

	// ParsingFailed 응답 또는 캐시 데이터의 파싱 실패
	ParsingFailed

	// Timeout 작업 시간 초과
	Timeout

	// Unavailable 외부 서비스 일시적 사용 불가 (non-2xx 응답 등)
	Unavailable
)
