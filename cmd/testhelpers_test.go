package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sells-group/jeonse-risk/internal/config"
)

const certificate = `[집합건물] 서울특별시 마포구 망원동 1 제101동 제1호
주요 등기사항 요약 (참고용)
1. 소유지분현황 ( 갑구 )
홍길동 (소유자) 800101-******* 단독소유 서울특별시 마포구 망원동 1 2
2. 소유지분을 제외한 소유권에 관한 사항 ( 갑구 )
- 기록사항 없음
3. (근)저당권 및 전세권 등 ( 을구 )
5 근저당권설정 2020년 3월 5일 제1234호 채권최고액 금240,000,000원 근저당권자 주식회사국민은행 홍길동
[참고사항]`

// useTestConfig installs a default config with offline backends and a
// SQLite store under a temp dir. The previous config is restored on
// cleanup.
func useTestConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))

	c, err := config.Load()
	require.NoError(t, os.Chdir(origDir))
	require.NoError(t, err)

	c.Extract.Backends = []string{"pattern", "table"}
	c.Extract.LLMProvider = "none"
	c.Store.Driver = "sqlite"
	c.Store.DatabaseURL = filepath.Join(dir, "test.db")

	old := cfg
	cfg = c
	t.Cleanup(func() { cfg = old })
	return c
}

func writeCertificate(t *testing.T, dir, name string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(certificate), 0o644))
	return p
}

func newTestEnv(t *testing.T, withStore bool) *appEnv {
	t.Helper()
	useTestConfig(t)
	env, err := initApp(context.Background(), "serve", withStore)
	require.NoError(t, err)
	t.Cleanup(env.Close)
	return env
}
