package domain

// Routes used by the guards and the views.
const (
	RouteSignIn    = "/login"
	RouteDashboard = "/dashboard"
	RouteNewOrder  = "/orders/new"
)

// DepartmentRoute returns the order-list route of d.
func DepartmentRoute(d Department) string {
	return "/orders/" + string(d)
}

// CanAccessDepartment reports whether u may see and manage orders of d.
func CanAccessDepartment(u User, d Department) bool {
	if u.Role == RoleAdmin {
		return true
	}
	own, ok := u.Role.Department()
	return ok && own == d
}

// LandingRouteFor returns where u lands after sign-in or a denied navigation.
func LandingRouteFor(u User) string {
	if d, ok := u.Role.Department(); ok {
		return DepartmentRoute(d)
	}
	if u.Role == RoleAdmin {
		return RouteDashboard
	}
	return RouteSignIn
}

// Decision is the outcome of a route guard.
type Decision struct {
	Allow    bool
	Redirect string
}

func allow() Decision { return Decision{Allow: true} }

func redirect(to string) Decision { return Decision{Redirect: to} }

// AuthorizeSignedIn lets any signed-in user through.
func AuthorizeSignedIn(u *User) Decision {
	if u == nil {
		return redirect(RouteSignIn)
	}
	return allow()
}

// AuthorizeDepartment guards a department view.
func AuthorizeDepartment(u *User, d Department) Decision {
	if u == nil {
		return redirect(RouteSignIn)
	}
	if !CanAccessDepartment(*u, d) {
		return redirect(LandingRouteFor(*u))
	}
	return allow()
}

// AuthorizeDashboard guards the aggregate dashboard, which is admin only.
func AuthorizeDashboard(u *User) Decision {
	if u == nil {
		return redirect(RouteSignIn)
	}
	if !u.IsAdmin() {
		return redirect(LandingRouteFor(*u))
	}
	return allow()
}

// NavLink is one entry of the navigation bar.
type NavLink struct {
	Href  string
	Label string
}

// NavLinksFor returns the navigation entries visible to u.
func NavLinksFor(u User) []NavLink {
	var links []NavLink
	if u.IsAdmin() {
		links = append(links, NavLink{Href: RouteDashboard, Label: "Dashboard"})
		for _, d := range Departments {
			links = append(links, NavLink{Href: DepartmentRoute(d), Label: d.Title() + " Orders"})
		}
	} else if d, ok := u.Role.Department(); ok {
		links = append(links, NavLink{Href: DepartmentRoute(d), Label: d.Title() + " Orders"})
	}
	return append(links, NavLink{Href: RouteNewOrder, Label: "New Order"})
}

// DefaultDepartmentFor picks the department preselected on a new-order form.
func DefaultDepartmentFor(u User) Department {
	if d, ok := u.Role.Department(); ok {
		return d
	}
	return DepartmentFish
}
