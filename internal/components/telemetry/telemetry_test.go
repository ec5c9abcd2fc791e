package telemetry

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/require"
)

func TestScopedAPI(t *testing.T) {
	mem := &MemoryAPI{}
	scoped := NewScopedAPI("account", mem)

	scoped.ReportBroken("history", errors.New("boom"))
	scoped.ReportWarning("emails", "empty")
	scoped.ReportDebug("login")
	scoped.ReportCount("sessions", 3)

	broken := mem.Reports(REPORT_BROKEN)
	require.Len(t, broken, 1)
	require.Equal(t, "account: history", broken[0].Id)
	require.EqualError(t, broken[0].Params[0].(error), "boom")

	require.Equal(t, "account: emails", mem.Reports(REPORT_WARNING)[0].Id)
	require.Equal(t, "account: login", mem.Reports(REPORT_DEBUG)[0].Id)

	counts := mem.Reports(REPORT_COUNT)
	require.Equal(t, "account: sessions", counts[0].Id)
	require.Equal(t, []any{int64(3)}, counts[0].Params)
}

type memoryOutput struct {
	mutex    sync.Mutex
	messages map[string]string
}

func (m *memoryOutput) Write(id, contents string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.messages[id] = contents
}

func TestInstrumentResty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("hello"))
	}))
	defer server.Close()

	mem := &MemoryAPI{}
	output := &memoryOutput{messages: map[string]string{}}
	client := resty.New()
	InstrumentResty(client, mem, output)

	_, err := client.R().SetBody("payload").Post(server.URL + "/home.aspx")
	require.NoError(t, err)

	debug := mem.Reports(REPORT_DEBUG)
	require.Len(t, debug, 2)
	require.Equal(t, report_resty_request, debug[0].Id)
	require.Equal(t, report_resty_response, debug[1].Id)

	message := output.messages["1"]
	require.Contains(t, message, "POST "+server.URL+"/home.aspx")
	require.Contains(t, message, "payload")
	require.Contains(t, message, "200 ")
	require.Contains(t, message, "hello")
}

func TestInstrumentRestyError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	mem := &MemoryAPI{}
	client := resty.New()
	InstrumentResty(client, mem, nil)

	_, err := client.R().Get(url)
	require.Error(t, err)
	require.Len(t, mem.Reports(REPORT_BROKEN), 1)
}
