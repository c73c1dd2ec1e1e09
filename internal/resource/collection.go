package resource

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/stratus/ral-core/internal/model"
)

// =============================================================================
// COLLECTIONS
// =============================================================================

// Collection is an enumerable view over a hasMany relation. The chain
// methods return derived collections sharing the same parent and relation,
// so a base collection can be reused:
//
//	recent := queue.Collection("Messages")
//	page := recent.PageSize(50).Limit(200)
type Collection struct {
	parent *Handle
	model  *model.Collection

	extraParams model.Params
	limit       int
	pageSize    int
}

func newCollection(parent *Handle, cm *model.Collection) *Collection {
	return &Collection{parent: parent, model: cm}
}

// Name returns the collection's member name.
func (c *Collection) Name() string { return c.model.Name }

func (c *Collection) clone() *Collection {
	out := &Collection{
		parent:   c.parent,
		model:    c.model,
		limit:    c.limit,
		pageSize: c.pageSize,
	}
	if c.extraParams != nil {
		out.extraParams = make(model.Params, len(c.extraParams))
		for k, v := range c.extraParams {
			out.extraParams[k] = v
		}
	}
	return out
}

// All returns the collection unrestricted.
func (c *Collection) All() *Collection { return c.clone() }

// Filter returns the collection with extra request parameters applied on
// top of the modeled ones.
func (c *Collection) Filter(params model.Params) *Collection {
	out := c.clone()
	if out.extraParams == nil {
		out.extraParams = make(model.Params, len(params))
	}
	for k, v := range params {
		out.extraParams[k] = v
	}
	return out
}

// Limit caps the total number of resources iterated.
func (c *Collection) Limit(n int) *Collection {
	out := c.clone()
	out.limit = n
	return out
}

// PageSize sets how many resources each underlying call requests. It is
// ignored when the operation does not page.
func (c *Collection) PageSize(n int) *Collection {
	out := c.clone()
	out.pageSize = n
	return out
}

// Pages iterates the collection page by page, each page a slice of handles.
func (c *Collection) Pages(ctx context.Context) Iterator[[]*Handle] {
	return &pageIterator{ctx: ctx, col: c.clone()}
}

// Resources iterates the collection one handle at a time across pages.
func (c *Collection) Resources(ctx context.Context) Iterator[*Handle] {
	return &resourceIterator{pages: c.Pages(ctx)}
}

// BatchAction returns the named batch action of the collection's resource
// type.
func (c *Collection) BatchAction(name string) (*BatchAction, error) {
	batch, err := c.model.BatchActions()
	if err != nil {
		return nil, err
	}
	for _, am := range batch {
		if am.Name == name {
			return &BatchAction{collection: c, model: am}, nil
		}
	}
	return nil, fmt.Errorf("collection %s has no batch action %q", c.model.Name, name)
}

// =============================================================================
// PAGE ITERATION
// =============================================================================

// pageIterator drives the collection's list operation, following the
// operation's pagination tokens and materializing each page into handles.
type pageIterator struct {
	ctx context.Context
	col *Collection

	op         *model.Operation
	handler    *ResourceHandler
	baseParams model.Params

	started   bool
	done      bool
	count     int
	nextToken any
	page      []*Handle
	err       error
}

func (it *pageIterator) init() error {
	op, err := it.col.parent.meta.Context.Service.Operation(it.col.model.Request.Operation)
	if err != nil {
		return err
	}
	it.op = op

	params, err := CreateRequestParameters(it.ctx, it.col.parent, it.col.model.Request.Params, nil, nil)
	if err != nil {
		return err
	}
	for k, v := range it.col.extraParams {
		params[k] = v
	}
	it.baseParams = params

	if it.col.model.Resource == nil {
		return fmt.Errorf("collection %s models no resource", it.col.model.Name)
	}
	it.handler = &ResourceHandler{
		SearchPath:    it.col.model.Path,
		Factory:       it.col.parent.factory,
		Resource:      it.col.model.Resource,
		OperationName: op.Name(),
	}
	return nil
}

func (it *pageIterator) Next() bool {
	if it.done || it.err != nil {
		return false
	}
	if !it.started {
		if err := it.init(); err != nil {
			it.err = err
			return false
		}
		it.started = true
		it.col.parent.factory.logger.Debug("iterating collection",
			zap.Stringer("resource", it.col.parent),
			zap.String("collection", it.col.model.Name),
			zap.String("operation", it.op.Name()))
	}

	params := make(model.Params, len(it.baseParams)+2)
	for k, v := range it.baseParams {
		params[k] = v
	}
	paging := it.op.Pagination
	if paging != nil {
		if it.nextToken != nil {
			params[paging.InputToken] = it.nextToken
		}
		if it.col.pageSize > 0 && paging.LimitKey != "" {
			params[paging.LimitKey] = it.col.pageSize
		}
	}

	response, err := it.col.parent.meta.Client.CallOperation(it.ctx, it.op.Name(), params)
	if err != nil {
		it.err = err
		return false
	}

	result, err := it.handler.Handle(it.ctx, it.col.parent, params, response)
	if err != nil {
		it.err = err
		return false
	}
	items := result.Resources
	if result.Resource != nil {
		items = []*Handle{result.Resource}
	}

	if it.col.limit > 0 {
		remaining := it.col.limit - it.count
		if len(items) >= remaining {
			items = items[:remaining]
			it.done = true
		}
	}
	it.count += len(items)
	it.page = items

	if paging == nil {
		it.done = true
	} else if !it.done {
		token := model.SearchPath(paging.OutputToken, response)
		if token == nil || token == "" {
			it.done = true
		} else {
			it.nextToken = token
		}
	}
	return true
}

func (it *pageIterator) Value() []*Handle { return it.page }

func (it *pageIterator) Err() error { return it.err }

func (it *pageIterator) Close() error {
	it.done = true
	return nil
}

// resourceIterator flattens a page iterator into single handles.
type resourceIterator struct {
	pages   Iterator[[]*Handle]
	current []*Handle
	idx     int
}

func (it *resourceIterator) Next() bool {
	for it.idx >= len(it.current) {
		if !it.pages.Next() {
			return false
		}
		it.current = it.pages.Value()
		it.idx = 0
	}
	it.idx++
	return true
}

func (it *resourceIterator) Value() *Handle { return it.current[it.idx-1] }

func (it *resourceIterator) Err() error { return it.pages.Err() }

func (it *resourceIterator) Close() error { return it.pages.Close() }

// =============================================================================
// BATCH ACTIONS
// =============================================================================

// BatchAction executes one batch action page-wise across a collection. Each
// page's resources contribute their parameters at their list position, one
// operation call per page.
type BatchAction struct {
	collection *Collection
	model      *model.Action
}

// Name returns the batch action's member name.
func (b *BatchAction) Name() string { return b.model.Name }

// Call runs the batch action and returns one decoded response per page.
func (b *BatchAction) Call(ctx context.Context, extra model.Params) ([]model.Params, error) {
	client := b.collection.parent.meta.Client
	var responses []model.Params

	pages := b.collection.Pages(ctx)
	defer pages.Close()
	for pages.Next() {
		page := pages.Value()
		params := model.Params{}
		for i, handle := range page {
			index := i
			if _, err := CreateRequestParameters(ctx, handle, b.model.Request.Params, params, &index); err != nil {
				return nil, err
			}
		}
		if len(params) == 0 {
			break
		}
		for k, v := range extra {
			params[k] = v
		}
		response, err := client.CallOperation(ctx, b.model.Request.Operation, params)
		if err != nil {
			return nil, err
		}
		responses = append(responses, response)
	}
	if err := pages.Err(); err != nil {
		return nil, err
	}
	return responses, nil
}
