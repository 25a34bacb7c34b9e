package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/prohmpiriya/glownatura-admin/internal/apierror"
	"github.com/prohmpiriya/glownatura-admin/internal/domain"
	"github.com/prohmpiriya/glownatura-admin/internal/repository"
	"github.com/prohmpiriya/glownatura-admin/internal/resource"
	"github.com/prohmpiriya/glownatura-admin/internal/state"
	"github.com/prohmpiriya/glownatura-admin/internal/transport"
)

type command struct {
	usage string
	// view is what the navigator reports while the command runs; the
	// command name when empty
	view string
	op   apierror.Operation
	run  func(ctx context.Context, a *app, args []string) error
}

var commands = map[string]command{
	"login":               {usage: "login -email E -password P", view: transport.ViewLogin, op: apierror.OpLogin, run: login},
	"logout":              {usage: "logout", run: logout},
	"whoami":              {usage: "whoami", run: whoami},
	"register":            {usage: "register -name N -email E -password P", view: transport.ViewRegister, op: apierror.OpRegister, run: register},
	"verify":              {usage: "verify -token T", view: transport.ViewVerifyEmail, run: verify},
	"resend-verification": {usage: "resend-verification -email E", view: transport.ViewVerificationSent, run: resendVerification},
	"forgot-password":     {usage: "forgot-password -email E", view: transport.ViewForgotPassword, op: apierror.OpForgotPassword, run: forgotPassword},
	"reset-password":      {usage: "reset-password -token T -password P", view: transport.ViewForgotPassword, run: resetPassword},

	"products list":      {usage: "products list [-page -limit -search -sort -order -status -category]", run: listProducts},
	"products get":       {usage: "products get <id>", run: getProduct},
	"products delete":    {usage: "products delete <id>", run: deleteProduct},
	"products sku":       {usage: "products sku", run: generateSKU},
	"products low-stock": {usage: "products low-stock", run: lowStock},
	"products status":    {usage: "products status -status S <id>...", run: bulkProductStatus},

	"categories list":    {usage: "categories list", run: listCategories},
	"categories reorder": {usage: "categories reorder <id>...", run: reorderCategories},

	"orders list":    {usage: "orders list [-page -limit -search -sort -order -status -paymentStatus]", run: listOrders},
	"orders get":     {usage: "orders get <id>", run: getOrder},
	"orders status":  {usage: "orders status <id> -status S [-tracking N]", run: updateOrderStatus},
	"orders confirm": {usage: "orders confirm <id> [-proof URL]", run: confirmPayment},
	"orders cancel":  {usage: "orders cancel <id> -reason R", run: cancelOrder},
	"orders note":    {usage: "orders note <id> -note N", run: addOrderNote},
	"orders refund":  {usage: "orders refund <id> (-reason R | -approve | -reject) [-note N]", run: refundOrder},
	"orders export":  {usage: "orders export [-status S -o FILE]", run: exportOrders},

	"reviews list":    {usage: "reviews list [-page -limit -search -status -product]", run: listReviews},
	"reviews approve": {usage: "reviews approve <id>", run: moderateReview(domain.ReviewApproved)},
	"reviews reject":  {usage: "reviews reject <id>", run: moderateReview(domain.ReviewRejected)},
	"reviews delete":  {usage: "reviews delete <id>", run: deleteReview},
	"reviews pending": {usage: "reviews pending", run: pendingReviews},

	"media list":   {usage: "media list [-page -limit -search]", run: listMedia},
	"media upload": {usage: "media upload <file>...", run: uploadMedia},
	"media delete": {usage: "media delete <id>", run: deleteMedia},
	"media prune":  {usage: "media prune", run: pruneMedia},

	"settings get": {usage: "settings get", run: getSettings},

	"templates list":    {usage: "templates list", run: listTemplates},
	"templates restore": {usage: "templates restore <type>", run: restoreTemplate},

	"dashboard stats":  {usage: "dashboard stats [-period P]", run: dashboardStats},
	"dashboard recent": {usage: "dashboard recent [-limit N]", run: recentOrders},
	"dashboard top":    {usage: "dashboard top [-period P -limit N]", run: topProducts},
	"dashboard sales":  {usage: "dashboard sales [-period P -group-by G]", run: salesData},

	"watch reviews": {usage: "watch reviews [-interval D]", run: watchReviews},
}

func lookup(args []string) (string, command, []string, bool) {
	if len(args) >= 2 {
		name := args[0] + " " + args[1]
		if cmd, ok := commands[name]; ok {
			return name, cmd, args[2:], true
		}
	}
	if len(args) >= 1 {
		if cmd, ok := commands[args[0]]; ok {
			return args[0], cmd, args[1:], true
		}
	}
	return "", command{}, nil, false
}

func usage(w io.Writer) {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintln(w, "Usage: glowctl <command> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	for _, name := range names {
		fmt.Fprintf(w, "  %s\n", commands[name].usage)
	}
}

type usageError string

func (e usageError) Error() string { return string(e) }

// parseWithID parses fs and returns one positional id, accepted before or
// after the flags
func parseWithID(fs *flag.FlagSet, args []string, what string) (string, error) {
	var id string
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		id, args = args[0], args[1:]
	}
	if err := fs.Parse(args); err != nil {
		return "", err
	}
	if id == "" && fs.NArg() > 0 {
		id = fs.Arg(0)
	}
	if id == "" {
		return "", usageError(fmt.Sprintf("%s: missing <%s>", fs.Name(), what))
	}
	return id, nil
}

func required(fs *flag.FlagSet, pairs ...string) error {
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i+1] == "" {
			return usageError(fmt.Sprintf("%s: -%s is required", fs.Name(), pairs[i]))
		}
	}
	return nil
}

type queryFlags struct {
	page      int
	limit     int
	search    string
	sortBy    string
	sortOrder string
	filters   map[string]*string
}

func addQueryFlags(fs *flag.FlagSet, filters ...string) *queryFlags {
	q := &queryFlags{filters: make(map[string]*string, len(filters))}
	fs.IntVar(&q.page, "page", 1, "page number")
	fs.IntVar(&q.limit, "limit", 20, "page size")
	fs.StringVar(&q.search, "search", "", "free text search")
	fs.StringVar(&q.sortBy, "sort", "", "sort field")
	fs.StringVar(&q.sortOrder, "order", "", "sort order, asc or desc")
	for _, f := range filters {
		q.filters[f] = fs.String(f, "", "filter by "+f)
	}
	return q
}

func (q *queryFlags) query() resource.Query {
	out := resource.Query{
		Page:      q.page,
		Limit:     q.limit,
		Search:    q.search,
		SortBy:    q.sortBy,
		SortOrder: resource.SortOrder(q.sortOrder),
	}
	for key, v := range q.filters {
		out = out.With(key, *v)
	}
	return out
}

type pageOutput[T any] struct {
	Items      []T                 `json:"items"`
	Pagination resource.Pagination `json:"pagination"`
}

func printPage[T any](a *app, p *resource.Page[T]) error {
	return a.print(pageOutput[T]{Items: p.Items, Pagination: p.Pagination})
}

// listCommand builds a list command over fetch with the given filter flags
func listCommand[T any](name string, fetch func(ctx context.Context, q resource.Query) (*resource.Page[T], error), filters ...string) func(ctx context.Context, a *app, args []string) error {
	return func(ctx context.Context, a *app, args []string) error {
		fs := a.flags(name)
		q := addQueryFlags(fs, filters...)
		if err := fs.Parse(args); err != nil {
			return err
		}
		page, err := fetch(ctx, q.query())
		if err != nil {
			return err
		}
		return printPage(a, page)
	}
}

// auth

func login(ctx context.Context, a *app, args []string) error {
	fs := a.flags("login")
	email := fs.String("email", "", "admin email")
	password := fs.String("password", "", "admin password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := required(fs, "email", *email, "password", *password); err != nil {
		return err
	}

	res, err := a.repos.Auth.Login(ctx, repository.Credentials{Email: *email, Password: *password})
	if err != nil {
		return err
	}
	a.notify.Success("Login successful")
	return a.print(res.Admin)
}

func logout(ctx context.Context, a *app, args []string) error {
	if err := a.repos.Auth.Logout(ctx); err != nil {
		return err
	}
	a.notify.Success("Logged out")
	return nil
}

func whoami(ctx context.Context, a *app, args []string) error {
	if !a.repos.Auth.IsAuthenticated() {
		return usageError("not logged in")
	}
	admin, err := a.repos.Auth.Me(ctx)
	if err != nil {
		return err
	}
	return a.print(admin)
}

func register(ctx context.Context, a *app, args []string) error {
	fs := a.flags("register")
	name := fs.String("name", "", "display name")
	email := fs.String("email", "", "admin email")
	password := fs.String("password", "", "admin password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := required(fs, "name", *name, "email", *email, "password", *password); err != nil {
		return err
	}

	admin, err := a.repos.Auth.Register(ctx, repository.Registration{Name: *name, Email: *email, Password: *password})
	if err != nil {
		return err
	}
	a.notify.Success("Registration successful, check your email to verify your account")
	return a.print(admin)
}

func verify(ctx context.Context, a *app, args []string) error {
	fs := a.flags("verify")
	token := fs.String("token", "", "verification token from the email")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := required(fs, "token", *token); err != nil {
		return err
	}

	res, err := a.repos.Auth.VerifyEmail(ctx, *token)
	if err != nil {
		return err
	}
	a.notify.Success("Email verified")
	return a.print(res.Admin)
}

func resendVerification(ctx context.Context, a *app, args []string) error {
	fs := a.flags("resend-verification")
	email := fs.String("email", "", "admin email")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := required(fs, "email", *email); err != nil {
		return err
	}
	if err := a.repos.Auth.ResendVerification(ctx, *email); err != nil {
		return err
	}
	a.notify.Success("Verification email sent")
	return nil
}

func forgotPassword(ctx context.Context, a *app, args []string) error {
	fs := a.flags("forgot-password")
	email := fs.String("email", "", "admin email")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := required(fs, "email", *email); err != nil {
		return err
	}
	if err := a.repos.Auth.ForgotPassword(ctx, *email); err != nil {
		return err
	}
	a.notify.Success("Password reset email sent")
	return nil
}

func resetPassword(ctx context.Context, a *app, args []string) error {
	fs := a.flags("reset-password")
	token := fs.String("token", "", "reset token from the email")
	password := fs.String("password", "", "new password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := required(fs, "token", *token, "password", *password); err != nil {
		return err
	}
	if err := a.repos.Auth.ResetPassword(ctx, *token, *password); err != nil {
		return err
	}
	a.notify.Success("Password reset, you can now log in")
	return nil
}

// products

func listProducts(ctx context.Context, a *app, args []string) error {
	return listCommand("products list", a.repos.Products.List, "status", "category")(ctx, a, args)
}

func getProduct(ctx context.Context, a *app, args []string) error {
	id, err := parseWithID(a.flags("products get"), args, "id")
	if err != nil {
		return err
	}
	p, err := a.repos.Products.Get(ctx, id)
	if err != nil {
		return err
	}
	return a.print(p)
}

func deleteProduct(ctx context.Context, a *app, args []string) error {
	id, err := parseWithID(a.flags("products delete"), args, "id")
	if err != nil {
		return err
	}
	list := state.NewProductList(a.repos.Products, resource.Query{Limit: 1}, a.stateOptions())
	return list.Delete(ctx, id)
}

func generateSKU(ctx context.Context, a *app, args []string) error {
	sku, err := a.repos.Products.GenerateSKU(ctx)
	if err != nil {
		return err
	}
	return a.print(map[string]string{"sku": sku})
}

func lowStock(ctx context.Context, a *app, args []string) error {
	products, err := a.repos.Products.LowStock(ctx)
	if err != nil {
		return err
	}
	return a.print(products)
}

func bulkProductStatus(ctx context.Context, a *app, args []string) error {
	fs := a.flags("products status")
	status := fs.String("status", "", "active, inactive or draft")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := required(fs, "status", *status); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return usageError("products status: at least one <id> is required")
	}
	list := state.NewProductList(a.repos.Products, resource.Query{Limit: 1}, a.stateOptions())
	return list.BulkUpdateStatus(ctx, fs.Args(), domain.ProductStatus(*status))
}

// categories

func listCategories(ctx context.Context, a *app, args []string) error {
	page, err := a.repos.Categories.List(ctx, resource.Query{})
	if err != nil {
		return err
	}
	return a.print(page.Items)
}

func reorderCategories(ctx context.Context, a *app, args []string) error {
	if len(args) == 0 {
		return usageError("categories reorder: list category ids in the new order")
	}
	order := make([]repository.CategoryOrder, len(args))
	for i, id := range args {
		order[i] = repository.CategoryOrder{ID: id, DisplayOrder: i + 1}
	}

	list := state.NewCategoryList(a.repos.Categories, resource.Query{}, a.stateOptions())
	if err := list.Reorder(ctx, order); err != nil {
		return err
	}
	return a.print(list.Snapshot().Items)
}

// orders

func listOrders(ctx context.Context, a *app, args []string) error {
	return listCommand("orders list", a.repos.Orders.List, "status", "paymentStatus")(ctx, a, args)
}

func getOrder(ctx context.Context, a *app, args []string) error {
	id, err := parseWithID(a.flags("orders get"), args, "id")
	if err != nil {
		return err
	}
	return a.orderAction(ctx, id, func(d *state.OrderDetail) error { return d.Load(ctx) })
}

// orderAction runs fn against the order detail and prints the reloaded order
func (a *app) orderAction(ctx context.Context, id string, fn func(d *state.OrderDetail) error) error {
	d := state.NewOrderDetail(a.repos.Orders, id, a.stateOptions())
	if err := fn(d); err != nil {
		return err
	}
	return a.print(d.Snapshot().Value)
}

func updateOrderStatus(ctx context.Context, a *app, args []string) error {
	fs := a.flags("orders status")
	status := fs.String("status", "", "new order status")
	tracking := fs.String("tracking", "", "tracking number, required when shipped")
	id, err := parseWithID(fs, args, "id")
	if err != nil {
		return err
	}
	if err := required(fs, "status", *status); err != nil {
		return err
	}
	return a.orderAction(ctx, id, func(d *state.OrderDetail) error {
		return d.UpdateStatus(ctx, id, domain.OrderStatus(*status), *tracking)
	})
}

func confirmPayment(ctx context.Context, a *app, args []string) error {
	fs := a.flags("orders confirm")
	proof := fs.String("proof", "", "payment proof URL")
	id, err := parseWithID(fs, args, "id")
	if err != nil {
		return err
	}
	return a.orderAction(ctx, id, func(d *state.OrderDetail) error {
		return d.ConfirmPayment(ctx, id, *proof)
	})
}

func cancelOrder(ctx context.Context, a *app, args []string) error {
	fs := a.flags("orders cancel")
	reason := fs.String("reason", "", "cancellation reason")
	id, err := parseWithID(fs, args, "id")
	if err != nil {
		return err
	}
	if err := required(fs, "reason", *reason); err != nil {
		return err
	}
	return a.orderAction(ctx, id, func(d *state.OrderDetail) error {
		return d.Cancel(ctx, id, *reason)
	})
}

func addOrderNote(ctx context.Context, a *app, args []string) error {
	fs := a.flags("orders note")
	note := fs.String("note", "", "admin note")
	id, err := parseWithID(fs, args, "id")
	if err != nil {
		return err
	}
	if err := required(fs, "note", *note); err != nil {
		return err
	}
	return a.orderAction(ctx, id, func(d *state.OrderDetail) error {
		return d.AddNote(ctx, id, *note)
	})
}

func refundOrder(ctx context.Context, a *app, args []string) error {
	fs := a.flags("orders refund")
	reason := fs.String("reason", "", "request a refund with this reason")
	approve := fs.Bool("approve", false, "approve the pending refund")
	reject := fs.Bool("reject", false, "reject the pending refund")
	note := fs.String("note", "", "note stored with the decision")
	id, err := parseWithID(fs, args, "id")
	if err != nil {
		return err
	}

	var order *domain.Order
	switch {
	case *reason != "" && !*approve && !*reject:
		order, err = a.repos.Orders.RequestRefund(ctx, id, *reason)
	case *reason == "" && *approve != *reject:
		order, err = a.repos.Orders.ProcessRefund(ctx, id, *approve, *note)
	default:
		return usageError("orders refund: pass exactly one of -reason, -approve or -reject")
	}
	if err != nil {
		return err
	}
	return a.print(order)
}

func exportOrders(ctx context.Context, a *app, args []string) error {
	fs := a.flags("orders export")
	status := fs.String("status", "", "only orders with this status")
	payment := fs.String("paymentStatus", "", "only orders with this payment status")
	output := fs.String("o", "", `output file, "-" for stdout (default: suggested filename)`)
	if err := fs.Parse(args); err != nil {
		return err
	}

	q := resource.Query{}.With("status", *status).With("paymentStatus", *payment)
	dl, err := a.repos.Orders.Export(ctx, q)
	if err != nil {
		return err
	}
	if *output == "-" {
		_, err := a.out.Write(dl.Body)
		return err
	}

	path := *output
	if path == "" {
		path = dl.Filename
	}
	if err := os.WriteFile(path, dl.Body, 0o644); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	return a.print(map[string]any{"file": path, "bytes": len(dl.Body)})
}

// reviews

func listReviews(ctx context.Context, a *app, args []string) error {
	return listCommand("reviews list", a.repos.Reviews.List, "status", "product")(ctx, a, args)
}

func pendingQueue(a *app) *state.ReviewList {
	q := resource.Query{Limit: 20}.With("status", string(domain.ReviewPending))
	return state.NewReviewList(a.repos.Reviews, q, a.stateOptions())
}

// moderateReview sets status on one review and prints the remaining queue
func moderateReview(status domain.ReviewStatus) func(ctx context.Context, a *app, args []string) error {
	return func(ctx context.Context, a *app, args []string) error {
		id, err := parseWithID(a.flags("reviews "+string(status)), args, "id")
		if err != nil {
			return err
		}
		queue := pendingQueue(a)
		if err := queue.UpdateStatus(ctx, id, status); err != nil {
			return err
		}
		snap := queue.Snapshot()
		return a.print(pageOutput[domain.Review]{Items: snap.Items, Pagination: snap.Pagination})
	}
}

func deleteReview(ctx context.Context, a *app, args []string) error {
	id, err := parseWithID(a.flags("reviews delete"), args, "id")
	if err != nil {
		return err
	}
	return pendingQueue(a).Delete(ctx, id)
}

func pendingReviews(ctx context.Context, a *app, args []string) error {
	n, err := a.repos.Reviews.PendingCount(ctx)
	if err != nil {
		return err
	}
	return a.print(map[string]int{"pending": n})
}

// media

func listMedia(ctx context.Context, a *app, args []string) error {
	return listCommand("media list", a.repos.Media.List)(ctx, a, args)
}

func uploadMedia(ctx context.Context, a *app, args []string) error {
	if len(args) == 0 {
		return usageError("media upload: at least one <file> is required")
	}

	list := state.NewMediaList(a.repos.Media, resource.Query{Limit: 1}, a.stateOptions())
	var uploaded []domain.Media
	for _, path := range args {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", path, err)
		}
		media, err := list.Upload(ctx, filepath.Base(path), f)
		f.Close()
		if err != nil {
			return err
		}
		uploaded = append(uploaded, media...)
	}
	return a.print(uploaded)
}

func deleteMedia(ctx context.Context, a *app, args []string) error {
	id, err := parseWithID(a.flags("media delete"), args, "id")
	if err != nil {
		return err
	}
	list := state.NewMediaList(a.repos.Media, resource.Query{Limit: 1}, a.stateOptions())
	return list.Delete(ctx, id)
}

func pruneMedia(ctx context.Context, a *app, args []string) error {
	n, err := a.repos.Media.DeleteUnused(ctx)
	if err != nil {
		return err
	}
	return a.print(map[string]int{"deletedCount": n})
}

// settings, templates and dashboard

func getSettings(ctx context.Context, a *app, args []string) error {
	s, err := a.repos.Settings.Get(ctx)
	if err != nil {
		return err
	}
	return a.print(s)
}

func listTemplates(ctx context.Context, a *app, args []string) error {
	templates, err := a.repos.EmailTemplates.List(ctx)
	if err != nil {
		return err
	}
	return a.print(templates)
}

func restoreTemplate(ctx context.Context, a *app, args []string) error {
	typ, err := parseWithID(a.flags("templates restore"), args, "type")
	if err != nil {
		return err
	}
	t, err := a.repos.EmailTemplates.Restore(ctx, typ)
	if err != nil {
		return err
	}
	a.notify.Success("Template restored")
	return a.print(t)
}

func dashboardStats(ctx context.Context, a *app, args []string) error {
	fs := a.flags("dashboard stats")
	period := fs.String("period", string(domain.PeriodMonth), "today, week, month or year")
	if err := fs.Parse(args); err != nil {
		return err
	}
	stats, err := a.repos.Dashboard.Stats(ctx, domain.Period(*period))
	if err != nil {
		return err
	}
	return a.print(stats)
}

func recentOrders(ctx context.Context, a *app, args []string) error {
	fs := a.flags("dashboard recent")
	limit := fs.Int("limit", 10, "number of orders")
	if err := fs.Parse(args); err != nil {
		return err
	}
	orders, err := a.repos.Dashboard.RecentOrders(ctx, *limit)
	if err != nil {
		return err
	}
	return a.print(orders)
}

func topProducts(ctx context.Context, a *app, args []string) error {
	fs := a.flags("dashboard top")
	period := fs.String("period", string(domain.PeriodMonth), "today, week, month or year")
	limit := fs.Int("limit", 10, "number of products")
	if err := fs.Parse(args); err != nil {
		return err
	}
	products, err := a.repos.Dashboard.TopProducts(ctx, domain.Period(*period), *limit)
	if err != nil {
		return err
	}
	return a.print(products)
}

func salesData(ctx context.Context, a *app, args []string) error {
	fs := a.flags("dashboard sales")
	period := fs.String("period", string(domain.PeriodMonth), "today, week, month or year")
	groupBy := fs.String("group-by", string(domain.GroupByDay), "day, week or month")
	if err := fs.Parse(args); err != nil {
		return err
	}
	data, err := a.repos.Dashboard.SalesData(ctx, domain.Period(*period), domain.GroupBy(*groupBy))
	if err != nil {
		return err
	}
	return a.print(data)
}

// watchReviews prints the pending review count until interrupted
func watchReviews(ctx context.Context, a *app, args []string) error {
	fs := a.flags("watch reviews")
	interval := fs.Duration("interval", a.poll, "refresh interval")
	if err := fs.Parse(args); err != nil {
		return err
	}

	poller := state.NewPoller(a.repos.Reviews.PendingCount, *interval, a.log)
	unsubscribe := poller.Subscribe(func(n int) {
		fmt.Fprintf(a.out, "%s pending reviews: %d\n", time.Now().Format(time.TimeOnly), n)
	})
	defer unsubscribe()

	poller.Run(ctx)
	return nil
}
