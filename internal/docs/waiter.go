package docs

import (
	"fmt"

	"github.com/stratus/ral-core/internal/model"
)

func (d *documenter) documentWaiters(sec *Section) error {
	waiters := d.resource.Waiters()
	if len(waiters) == 0 || d.ctx.Waiters == nil {
		return nil
	}
	names := make([]string, 0, len(waiters))
	for _, w := range waiters {
		names = append(names, w.Name)
	}
	d.members.set("waiters", names)

	addTypeOverview(sec, d.level, "Waiters",
		"Waiters provide an interface to wait for a resource to reach a specific state.")
	for _, w := range waiters {
		if err := d.documentResourceWaiter(sec.AddSection(w.Name), w); err != nil {
			return err
		}
	}
	return nil
}

func (d *documenter) documentResourceWaiter(sec *Section, w *model.Waiter) error {
	config, err := d.ctx.Waiters.Waiter(w.WaiterName)
	if err != nil {
		return err
	}
	op, err := d.ctx.Service.Operation(config.Operation)
	if err != nil {
		return err
	}
	description := fmt.Sprintf("Waits until this %s is %s. Polls %s every %d seconds "+
		"until a successful state is reached. An error is returned after %d failed checks.",
		d.resourceName, camelWords(w.RelativeName),
		code(d.serviceName+".Client."+config.Operation),
		config.DelaySeconds, config.MaxAttempts)
	return documentMethod(sec, methodOpts{
		name:        w.Name,
		description: description,
		operation:   op,
		callTemplate: fmt.Sprintf("err := %s.WaitUntil(ctx, %q, %%s)",
			d.exampleVar(), w.RelativeName),
		excludeInput: ignoreParams(w.Params),
		returnsNote:  "Only an error: nil once the waiter reaches a success state.",
		headingLevel: d.level + 1,
	})
}
