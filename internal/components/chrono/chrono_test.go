package chrono

import (
	"fatec-api/internal/components/telemetry"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStandardImplLocation(t *testing.T) {
	clock, err := NewStandardImpl()
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, "America/Sao_Paulo", clock.Location().String())
	require.Equal(t, clock.Location(), clock.Now().Location())
}

func TestFixed(t *testing.T) {
	instant := time.Date(2024, time.March, 4, 19, 0, 0, 0, time.UTC)
	clock := Fixed{Time: instant}
	require.Equal(t, instant, clock.Now())
	require.Equal(t, time.UTC, clock.Location())
}

func TestStandardCron(t *testing.T) {
	clock := Fixed{Time: time.Date(2024, time.March, 4, 19, 0, 0, 0, time.UTC)}
	tel := &telemetry.MemoryAPI{}
	scheduler := NewStandardCron(clock, tel)
	defer scheduler.Stop()

	require.NoError(t, scheduler.Cron("*/5 * * * *", func() {}))
	require.Error(t, scheduler.Cron("not a schedule", func() {}))
}
