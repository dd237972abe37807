//go:build integration

package app

import (
	"context"
	"fmt"
	"net"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	grpcadapter "github.com/gnuhannes/my-private-finances/internal/adapter/grpc"
	"github.com/gnuhannes/my-private-finances/internal/config"
)

var (
	testApp    *App
	grpcClient *grpcadapter.FinanceServiceClient
)

// TestMain boots PostgreSQL, opens the application and serves it over an
// in-memory gRPC listener.
func TestMain(m *testing.M) {
	ctx := context.Background()

	ctr, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("finances"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		tcpostgres.BasicWaitStrategies(),
	)
	if err != nil {
		panic(fmt.Sprintf("Failed to start postgres container: %v", err))
	}

	connStr, err := ctr.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		panic(fmt.Sprintf("Failed to get connection string: %v", err))
	}

	cfg, err := config.ProcessEnvironmentVariables(func(key string) string {
		if key == "DB_CONN_STR" {
			return connStr
		}
		return ""
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to build config: %v", err))
	}

	logger, _ := test.NewNullLogger()
	testApp, err = Open(ctx, cfg, logger)
	if err != nil {
		panic(fmt.Sprintf("Failed to open application: %v", err))
	}

	lis := bufconn.Listen(1024 * 1024)
	srv := grpc.NewServer(grpc.UnaryInterceptor(grpcadapter.LoggingInterceptor(logger)))
	grpcadapter.RegisterFinanceServiceServer(srv, grpcadapter.NewServer(testApp.Imports, testApp.Transfers, testApp.Recurring, testApp.Rules, testApp.Profiles))
	go func() { _ = srv.Serve(lis) }()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		panic(fmt.Sprintf("Failed to connect to gRPC server: %v", err))
	}
	grpcClient = grpcadapter.NewFinanceServiceClient(conn)

	code := m.Run()

	conn.Close()
	srv.Stop()
	testApp.Close()
	_ = testcontainers.TerminateContainer(ctr)
	os.Exit(code)
}

func createAccount(t *testing.T, name string) uuid.UUID {
	t.Helper()
	id := uuid.New()
	_, err := testApp.DB.ExecContext(context.Background(),
		`INSERT INTO accounts (id, name, currency) VALUES ($1, $2, 'EUR')`, id, name)
	require.NoError(t, err)
	return id
}

func call(t *testing.T, method string, req map[string]interface{}) map[string]*structpb.Value {
	t.Helper()
	in, err := structpb.NewStruct(req)
	require.NoError(t, err)
	out, err := grpcClient.Call(context.Background(), method, in)
	require.NoError(t, err)
	return out.GetFields()
}

func number(v *structpb.Value) int {
	return int(v.GetNumberValue())
}

const germanStatement = "Buchungstag;Betrag;Waehrung;Beguenstigter/Zahlungspflichtiger;Verwendungszweck\n" +
	"01.01.2024;-12,99;EUR;Netflix;Abo\n" +
	"31.01.2024;-12,99;EUR;Netflix;Abo\n" +
	"01.03.2024;-12,99;EUR;Netflix;Abo\n" +
	"01.04.2024;-12,99;EUR;Netflix;Abo\n" +
	"02.04.2024;-500,00;EUR;Sparkonto;Umbuchung\n"

func TestE2E_ImportIsIdempotent(t *testing.T) {
	accountID := createAccount(t, "Girokonto")

	req := map[string]interface{}{
		"account_id": accountID.String(),
		"content":    germanStatement,
		"profile":    "german-bank",
	}

	first := call(t, grpcadapter.MethodImportCSV, req)
	assert.Equal(t, 5, number(first["total_rows"]))
	assert.Equal(t, 5, number(first["created"]))
	assert.Equal(t, 0, number(first["failed"]))

	second := call(t, grpcadapter.MethodImportCSV, req)
	assert.Equal(t, 0, number(second["created"]))
	assert.Equal(t, 5, number(second["duplicates"]))
}

func TestE2E_TransferAndRecurringDetection(t *testing.T) {
	checking := createAccount(t, "Checking")
	savings := createAccount(t, "Savings")

	call(t, grpcadapter.MethodImportCSV, map[string]interface{}{
		"account_id": checking.String(),
		"content":    germanStatement,
		"profile":    "german-bank",
	})
	call(t, grpcadapter.MethodImportCSV, map[string]interface{}{
		"account_id": savings.String(),
		"content":    "booking_date,amount,currency,payee\n2024-04-02,500.00,EUR,Girokonto\n",
	})

	detected := call(t, grpcadapter.MethodDetectTransfers, map[string]interface{}{})
	candidates := detected["candidates"].GetListValue().GetValues()
	var pairID string
	for _, c := range candidates {
		fields := c.GetStructValue().GetFields()
		if fields["confidence"].GetStringValue() == "1.00" {
			pairID = fields["id"].GetStringValue()
		}
	}
	require.NotEmpty(t, pairID, "expected a same-day transfer candidate")

	rerun := call(t, grpcadapter.MethodDetectTransfers, map[string]interface{}{})
	assert.Empty(t, rerun["candidates"].GetListValue().GetValues())

	confirmed := call(t, grpcadapter.MethodConfirmTransfer, map[string]interface{}{"id": pairID})
	assert.Equal(t, "confirmed", confirmed["status"].GetStringValue())

	patterns := call(t, grpcadapter.MethodDetectRecurring, map[string]interface{}{"account_id": checking.String()})
	values := patterns["patterns"].GetListValue().GetValues()
	require.Len(t, values, 1)
	netflix := values[0].GetStructValue().GetFields()
	assert.Equal(t, "netflix", strings.ToLower(netflix["payee"].GetStringValue()))
	assert.Equal(t, "monthly", netflix["frequency"].GetStringValue())
	assert.Equal(t, "12.99", netflix["typical_amount"].GetStringValue())

	summary := call(t, grpcadapter.MethodRecurringSummary, map[string]interface{}{"account_id": checking.String()})
	assert.Equal(t, "12.99", summary["total_monthly_recurring"].GetStringValue())
}
