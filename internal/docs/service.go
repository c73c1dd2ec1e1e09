package docs

import (
	"fmt"

	"github.com/stratus/ral-core/internal/model"
)

// ServiceDocumenter renders a service's full reference: an index page
// covering the client, the service resource and the waiters, plus one page
// per resource type.
type ServiceDocumenter struct {
	ctx *model.ServiceContext
}

// NewServiceDocumenter builds a documenter over a validated context.
func NewServiceDocumenter(ctx *model.ServiceContext) (*ServiceDocumenter, error) {
	if err := ctx.Validate(); err != nil {
		return nil, err
	}
	return &ServiceDocumenter{ctx: ctx}, nil
}

// Generate renders every page of a service, keyed by file name.
func Generate(ctx *model.ServiceContext) (map[string][]byte, error) {
	d, err := NewServiceDocumenter(ctx)
	if err != nil {
		return nil, err
	}
	return d.Pages()
}

// Pages renders the index page plus one page per resource type.
func (s *ServiceDocumenter) Pages() (map[string][]byte, error) {
	pages := make(map[string][]byte)
	index, err := s.IndexPage()
	if err != nil {
		return nil, err
	}
	pages["index.md"] = index
	for _, name := range s.ctx.ResourceNames() {
		page, err := s.ResourcePage(name)
		if err != nil {
			return nil, err
		}
		pages[name+".md"] = page
	}
	return pages, nil
}

// IndexPage renders the service index: title, client operations, the
// service resource, the resource type index and the waiter definitions.
func (s *ServiceDocumenter) IndexPage() ([]byte, error) {
	doc := NewDocument("index")
	meta := s.ctx.Service.Metadata()

	title := doc.AddSection("title")
	title.Heading(1, fmt.Sprintf("%s (%s)", serviceDisplayName(s.ctx), code(s.ctx.ServiceName)))
	title.Paragraph(meta.Documentation)

	if err := s.documentClient(doc.AddSection("client")); err != nil {
		return nil, err
	}
	if err := s.documentServiceResource(doc.AddSection("service-resource")); err != nil {
		return nil, err
	}
	s.documentResourceIndex(doc.AddSection("resources"))
	if err := s.documentServiceWaiters(doc.AddSection("waiters")); err != nil {
		return nil, err
	}
	return doc.Render(), nil
}

// ResourcePage renders the reference page of one resource type.
func (s *ServiceDocumenter) ResourcePage(name string) ([]byte, error) {
	rd, err := NewResourceDocumenter(s.ctx, name)
	if err != nil {
		return nil, err
	}
	doc := NewDocument(name)
	doc.AddSection("title").Heading(1, rd.className())
	if err := rd.Document(doc.AddSection("resource")); err != nil {
		return nil, err
	}
	return doc.Render(), nil
}

func (s *ServiceDocumenter) documentClient(sec *Section) error {
	head := sec.AddSection("intro")
	head.Heading(2, "Client")
	head.Paragraph("The low-level client executes modeled operations over HTTP:")
	head.CodeBlock("go", fmt.Sprintf("sess := ral.NewSession()\nclient, err := sess.Client(%q, nil)",
		s.ctx.ServiceName))

	for _, name := range s.ctx.Service.OperationNames() {
		op, err := s.ctx.Service.Operation(name)
		if err != nil {
			return err
		}
		err = documentMethod(sec.AddSection(name), methodOpts{
			name:         name,
			description:  op.Documentation,
			operation:    op,
			callTemplate: fmt.Sprintf("out, err := client.CallOperation(ctx, %q, %%s)", name),
			withNotes:    true,
			headingLevel: 3,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *ServiceDocumenter) documentServiceResource(sec *Section) error {
	sec.AddSection("title").Heading(2, "Service resource")
	rd, err := newServiceResourceDocumenter(s.ctx, 3)
	if err != nil {
		return err
	}
	return rd.Document(sec.AddSection("resource"))
}

func (s *ServiceDocumenter) documentResourceIndex(sec *Section) {
	names := s.ctx.ResourceNames()
	if len(names) == 0 {
		return
	}
	sec.Heading(2, "Resource types")
	for _, name := range names {
		sec.Bullet(0, resourceLink(s.ctx.ServiceName, name))
	}
	sec.EndList()
}

func (s *ServiceDocumenter) documentServiceWaiters(sec *Section) error {
	if s.ctx.Waiters == nil {
		return nil
	}
	names, err := s.ctx.Waiters.WaiterNames()
	if err != nil {
		return err
	}
	if len(names) == 0 {
		return nil
	}
	sec.Heading(2, "Waiters")
	sec.Paragraph("Polling waiters defined for this service:")
	for _, name := range names {
		config, err := s.ctx.Waiters.Waiter(name)
		if err != nil {
			return err
		}
		wsec := sec.AddSection(name)
		wsec.Heading(3, name)
		wsec.Paragraph(config.Documentation)
		wsec.Paragraph(fmt.Sprintf("Polls %s every %d seconds, up to %d attempts.",
			code(config.Operation), config.DelaySeconds, config.MaxAttempts))
		for _, acc := range config.Acceptors {
			wsec.Bullet(0, fmt.Sprintf("%s when %s", code(acc.State), describeAcceptor(acc)))
		}
		wsec.EndList()
	}
	return nil
}

func describeAcceptor(acc *model.Acceptor) string {
	switch acc.Matcher {
	case model.MatcherStatus:
		return fmt.Sprintf("the response status is %v", acc.Expected)
	case model.MatcherError:
		return fmt.Sprintf("the service returns error code %v", code(fmt.Sprint(acc.Expected)))
	case model.MatcherPath:
		return fmt.Sprintf("%s equals %v", code(acc.Argument), acc.Expected)
	case model.MatcherPathAll:
		return fmt.Sprintf("every element of %s equals %v", code(acc.Argument), acc.Expected)
	case model.MatcherPathAny:
		return fmt.Sprintf("any element of %s equals %v", code(acc.Argument), acc.Expected)
	default:
		return fmt.Sprintf("%s matches %v", code(acc.Matcher), acc.Expected)
	}
}
