package document_test

import (
	"context"
	"testing"

	"github.com/aretw0/cadbridge/pkg/adapters/memory"
	"github.com/aretw0/cadbridge/pkg/document"
	"github.com/aretw0/cadbridge/pkg/domain"
	"github.com/aretw0/cadbridge/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T, opts ...memory.Option) (*memory.Host, *session.Session, *document.Manager) {
	t.Helper()
	host := memory.NewHost(opts...)
	s, err := session.ConnectApp(context.Background(), host)
	require.NoError(t, err)
	return host, s, document.New(s, nil)
}

func TestNewPart_UsesTemplate(t *testing.T) {
	ctx := context.Background()
	host, s, docs := setup(t, memory.WithoutDocument())

	title, err := docs.NewPart(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "Part2", title)

	calls := host.CallsTo("NewDocument")
	require.Len(t, calls, 1)
	assert.Equal(t, document.DefaultTemplates[domain.DocumentPart], calls[0].Args[0])
	assert.Empty(t, host.CallsTo("NewPart"))

	_, err = s.Part()
	assert.NoError(t, err, "session follows the new document")
}

func TestNewAssembly_FallsBack(t *testing.T) {
	ctx := context.Background()
	host, s, docs := setup(t)
	host.Fail("NewDocument")

	title, err := docs.NewAssembly(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "Assem1", title)
	assert.Len(t, host.CallsTo("NewAssembly"), 1)
	assert.Equal(t, domain.DocumentAssembly, s.DocumentType())

	host.Fail("NewDrawing")
	_, err = docs.NewDrawing(ctx, "")
	assert.ErrorIs(t, err, domain.ErrHostOperation)
}

func TestSetTemplate(t *testing.T) {
	ctx := context.Background()
	host, _, docs := setup(t)

	require.NoError(t, docs.SetTemplate(domain.DocumentDrawing, "/tmp/A3.drwdot"))
	assert.Equal(t, "/tmp/A3.drwdot", docs.Template(domain.DocumentDrawing))
	assert.ErrorIs(t, docs.SetTemplate(domain.DocumentUnknown, "x"), domain.ErrInvalidParameter)

	_, err := docs.NewDrawing(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/A3.drwdot", host.CallsTo("NewDocument")[0].Args[0])

	overridden := document.New(nil, map[domain.DocumentType]string{domain.DocumentPart: "/t/p.prtdot"})
	assert.Equal(t, "/t/p.prtdot", overridden.Template(domain.DocumentPart))
	assert.Equal(t, document.DefaultTemplates[domain.DocumentAssembly], overridden.Template(domain.DocumentAssembly))
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	host, s, docs := setup(t, memory.WithFile("/parts/bracket.SLDPRT"), memory.WithFile("/asm/frame.sldasm"))

	title, err := docs.Open(ctx, "/parts/bracket.SLDPRT")
	require.NoError(t, err)
	assert.Equal(t, "bracket.SLDPRT", title)
	assert.Equal(t, domain.DocumentPart, s.DocumentType())

	call := host.CallsTo("OpenDoc6")[0]
	assert.Equal(t, int32(domain.DocumentPart), call.Args[1])
	assert.Equal(t, int32(1), call.Args[2])

	_, err = docs.Open(ctx, "/asm/frame.sldasm")
	require.NoError(t, err)
	assert.Equal(t, domain.DocumentAssembly, s.DocumentType())
}

func TestOpen_Missing(t *testing.T) {
	_, _, docs := setup(t)

	_, err := docs.Open(context.Background(), "/nope.sldprt")
	var he *domain.HostError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, "OpenDoc6", he.Method)
	assert.Equal(t, int32(2), he.Code)
}

func TestCloseAndCloseAll(t *testing.T) {
	ctx := context.Background()
	host, s, docs := setup(t)

	_, err := docs.NewPart(ctx, "")
	require.NoError(t, err)
	_, err = docs.NewAssembly(ctx, "")
	require.NoError(t, err)
	assert.Len(t, host.Documents(), 3)

	require.NoError(t, docs.Close(ctx, true))
	assert.Len(t, host.CallsTo("Save3"), 1)
	assert.Equal(t, []string{"Part1", "Part2"}, host.Documents())

	n, err := docs.CloseAll(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Empty(t, host.Documents())

	_, err = s.Model()
	assert.ErrorIs(t, err, domain.ErrNoActiveDocument)

	require.NoError(t, docs.Close(ctx, false), "nothing open is a no-op")
	kind, err := docs.ActiveType(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.DocumentUnknown, kind)
}

func TestCloseAll_StuckHost(t *testing.T) {
	ctx := context.Background()
	host, _, docs := setup(t)
	host.Fail("CloseDoc")

	n, err := docs.CloseAll(ctx, false)
	assert.ErrorIs(t, err, domain.ErrHostOperation)
	assert.Equal(t, 1, n)
	assert.Len(t, host.CallsTo("CloseDoc"), 2)
}

func TestSave(t *testing.T) {
	ctx := context.Background()
	host, s, docs := setup(t)
	require.NoError(t, s.Refresh(ctx))

	require.NoError(t, docs.Save(ctx, ""))
	require.NoError(t, docs.Save(ctx, "/out/part.sldprt"))
	assert.Len(t, host.CallsTo("SaveAs"), 1)

	host.Fail("Save3")
	err := docs.Save(ctx, "")
	assert.ErrorIs(t, err, domain.ErrHostOperation)

	title, err := docs.Title(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Part1", title)
}
