package layout

import (
	"github.com/sirupsen/logrus"

	"github.com/jit-sim/jit-sim/sim"
)

// FactoryLayoutID selects the factory supply layout.
const FactoryLayoutID = "fabrica"

const (
	resourceMachines  = "producao"
	resourceSuppliers = "fornecedor"
)

// FactoryParams configures the factory supply layout.
type FactoryParams struct {
	InitialStock  int     // estoque_inicial
	StockCapacity int     // capacidade_estoque
	Suppliers     int     // qtd_fornecedores
	Machines      int     // qtd_maquinas
	ProdTimeMin   float64 // tempo_producao_min
	ProdTimeMax   float64 // tempo_producao_max
	SupplyTimeMin float64 // tempo_fornecedor_min
	SupplyTimeMax float64 // tempo_fornecedor_max
	Horizon       float64 // tempo_simulacao
}

// DefaultFactoryParams returns the documented defaults.
func DefaultFactoryParams() FactoryParams {
	return FactoryParams{
		InitialStock:  2,
		StockCapacity: 5,
		Suppliers:     1,
		Machines:      1,
		ProdTimeMin:   3,
		ProdTimeMax:   6,
		SupplyTimeMin: 5,
		SupplyTimeMax: 10,
		Horizon:       100,
	}
}

// Parameters spells the params out under their wire names.
func (p FactoryParams) Parameters() Parameters {
	return Parameters{
		"estoque_inicial":      p.InitialStock,
		"capacidade_estoque":   p.StockCapacity,
		"qtd_fornecedores":     p.Suppliers,
		"qtd_maquinas":         p.Machines,
		"tempo_producao_min":   p.ProdTimeMin,
		"tempo_producao_max":   p.ProdTimeMax,
		"tempo_fornecedor_min": p.SupplyTimeMin,
		"tempo_fornecedor_max": p.SupplyTimeMax,
		"tempo_simulacao":      p.Horizon,
	}
}

func decodeFactoryParams(params Parameters) (FactoryParams, error) {
	p := DefaultFactoryParams()
	d := newDecoder(FactoryLayoutID, params)
	p.InitialStock = d.atLeast("estoque_inicial", p.InitialStock, 0)
	p.StockCapacity = d.atLeast("capacidade_estoque", p.StockCapacity, 1)
	p.Suppliers = d.atLeast("qtd_fornecedores", p.Suppliers, 1)
	p.Machines = d.atLeast("qtd_maquinas", p.Machines, 1)
	p.ProdTimeMin = d.nonNegative("tempo_producao_min", p.ProdTimeMin)
	p.ProdTimeMax = d.nonNegative("tempo_producao_max", p.ProdTimeMax)
	p.SupplyTimeMin = d.nonNegative("tempo_fornecedor_min", p.SupplyTimeMin)
	p.SupplyTimeMax = d.nonNegative("tempo_fornecedor_max", p.SupplyTimeMax)
	p.Horizon = d.nonNegative("tempo_simulacao", p.Horizon)
	d.check(p.InitialStock <= p.StockCapacity, "estoque_inicial",
		"initial stock %d exceeds capacity %d", p.InitialStock, p.StockCapacity)
	d.check(p.ProdTimeMax > 0, "tempo_producao_max", "production must take time")
	d.check(p.SupplyTimeMax > 0, "tempo_fornecedor_max", "supply must take time")
	return p, d.err
}

// FactoryUtilization is the share of slot-time each resource pool was held:
// busy slot-time over pool capacity times the horizon, so a pool of N
// machines with one busy the whole run reports 1/N.
type FactoryUtilization struct {
	Machines  float64 `json:"maquinas"`
	Suppliers float64 `json:"fornecedores"`
}

// FactoryResult reports a factory supply run.
type FactoryResult struct {
	TotalTime       float64            `json:"tempo_total"`
	Produced        int                `json:"producao_total"`
	FinalStock      int                `json:"estoque_final"`
	Supplied        int                `json:"fornecimento_total"`
	InProduction    int                `json:"em_producao"`
	PendingSupplies int                `json:"fornecimentos_pendentes"`
	Utilization     FactoryUtilization `json:"utilizacao"`
}

// Layout implements Result.
func (FactoryResult) Layout() string { return FactoryLayoutID }

// InFlight is the stock drawn or supplied but not yet landed in a container:
// units being produced plus deliveries blocked on a full stock.
func (r FactoryResult) InFlight() int {
	return r.InProduction + r.PendingSupplies
}

// factorySupply is the per-run state of the factory supply layout.
type factorySupply struct {
	params FactoryParams
	sim    *sim.Simulator
	rng    *sim.PartitionedRNG

	stock     *sim.Container // raw material, bounded
	orders    *sim.Container // finished orders, unbounded
	machines  *sim.Resource
	suppliers *sim.Resource

	supplied        int
	inProduction    int
	pendingSupplies int
}

func runFactory(params Parameters, ctx runContext) (Result, error) {
	p, err := decodeFactoryParams(params)
	if err != nil {
		return nil, err
	}
	f := newFactorySupply(p, ctx)
	logrus.Debugf("factory with %d machines and %d suppliers", p.Machines, p.Suppliers)
	f.sim.Run()
	logrus.Debugf("factory: %d events, %d production starts, %d supply starts",
		f.sim.Executed(), f.machines.Grants(), f.suppliers.Grants())
	return f.result(), nil
}

func newFactorySupply(p FactoryParams, ctx runContext) *factorySupply {
	s := sim.NewSimulator(p.Horizon)
	f := &factorySupply{
		params:    p,
		sim:       s,
		rng:       sim.NewPartitionedRNG(ctx.key),
		stock:     sim.NewContainer(s, "estoque", float64(p.StockCapacity), float64(p.InitialStock)),
		orders:    sim.NewContainer(s, "pedidos", sim.Unbounded, 0),
		machines:  sim.NewResource(s, resourceMachines, p.Machines),
		suppliers: sim.NewResource(s, resourceSuppliers, p.Suppliers),
	}
	// One producer and one supplier loop; the pool capacities only bound
	// how many of their cycles may hold a slot at once.
	s.Process(resourceMachines, f.producing)
	s.Process(resourceSuppliers, f.supplying)
	return f
}

// producing turns one unit of stock into one order, forever.
func (f *factorySupply) producing(p *sim.Process) {
	rng := f.rng.ForSubsystem(resourceMachines)
	var cycle func()
	cycle = func() {
		if f.stock.Level() == 0 {
			logrus.Debugf("[t=%.2f] %s: stock empty, waiting for supply", p.Now(), p)
		}
		p.Get(f.stock, 1, func() {
			f.inProduction++
			p.Acquire(f.machines, func() {
				logrus.Debugf("[t=%.2f] %s: production started, stock %v", p.Now(), p, f.stock.Level())
				p.Timeout(sim.Uniform(rng, f.params.ProdTimeMin, f.params.ProdTimeMax), func() {
					p.Put(f.orders, 1, func() {
						f.inProduction--
						logrus.Debugf("[t=%.2f] %s: production finished", p.Now(), p)
						p.Release(f.machines, cycle)
					})
				})
			})
		})
	}
	cycle()
}

// supplying delivers one unit of stock per supply cycle, holding its
// supplier slot while the stock is full.
func (f *factorySupply) supplying(p *sim.Process) {
	rng := f.rng.ForSubsystem(resourceSuppliers)
	var cycle func()
	cycle = func() {
		p.Acquire(f.suppliers, func() {
			logrus.Debugf("[t=%.2f] %s: supply started, %d/%d suppliers busy", p.Now(), p, f.suppliers.Count(), f.suppliers.Capacity())
			p.Timeout(sim.Uniform(rng, f.params.SupplyTimeMin, f.params.SupplyTimeMax), func() {
				f.supplied++
				f.pendingSupplies++
				p.Put(f.stock, 1, func() {
					f.pendingSupplies--
					logrus.Debugf("[t=%.2f] %s: supply received, stock %v", p.Now(), p, f.stock.Level())
					p.Release(f.suppliers, cycle)
				})
			})
		})
	}
	cycle()
}

func (f *factorySupply) result() FactoryResult {
	h := f.params.Horizon
	return FactoryResult{
		TotalTime:       f.sim.Now(),
		Produced:        int(f.orders.Level()),
		FinalStock:      int(f.stock.Level()),
		Supplied:        f.supplied,
		InProduction:    f.inProduction,
		PendingSupplies: f.pendingSupplies,
		Utilization: FactoryUtilization{
			Machines:  f.machines.Utilization(h),
			Suppliers: f.suppliers.Utilization(h),
		},
	}
}
