package registry

// ERC20DeployBytecode is the creation code of the fixed-supply ERC20 deployed by
// deploy-erc. Its constructor is (string name, string symbol, uint8 decimals,
// uint256 supply) and mints supply * 10^decimals to the deployer.
const ERC20DeployBytecode = "0x60806040523480156200001157600080fd5b5060405162001f2e38038062001f2e833981810160405281019062000037919062000361565b836000908162000048919062000652565b5082600190816200005a919062000652565b5081600260006101000a81548160ff021916908360ff1602179055508160ff16600a620000889190620008bc565b816200009591906200090d565b600381905550600354600460003373ffffffffffffffffffffffffffffffffffffffff1673ffffffffffffffffffffffffffffffffffffffff168152602001908152602001600020819055503373ffffffffffffffffffffffffffffffffffffffff16600073ffffffffffffffffffffffffffffffffffffffff167fddf252ad1be2c89b69c2b068fc378daa952ba7f163c4a11628f55a4df523b3ef60035460405162000143919062000969565b60405180910390a35050505062000986565b6000604051905090565b600080fd5b600080fd5b600080fd5b600080fd5b6000601f19601f8301169050919050565b7f4e487b7100000000000000000000000000000000000000000000000000000000600052604160045260246000fd5b620001be8262000173565b810181811067ffffffffffffffff82111715620001e057620001df62000184565b5b80604052505050565b6000620001f562000155565b9050620002038282620001b3565b919050565b600067ffffffffffffffff82111562000226576200022562000184565b5b620002318262000173565b9050602081019050919050565b60005b838110156200025e57808201518184015260208101905062000241565b60008484015250505050565b6000620002816200027b8462000208565b620001e9565b905082815260208101848484011115620002a0576200029f6200016e565b5b620002ad8482856200023e565b509392505050565b600082601f830112620002cd57620002cc62000169565b5b8151620002df8482602086016200026a565b91505092915050565b600060ff82169050919050565b6200030081620002e8565b81146200030c57600080fd5b50565b6000815190506200032081620002f5565b92915050565b6000819050919050565b6200033b8162000326565b81146200034757600080fd5b50565b6000815190506200035b8162000330565b92915050565b600080600080608085870312156200037e576200037d6200015f565b5b600085015167ffffffffffffffff8111156200039f576200039e62000164565b5b620003ad87828801620002b5565b945050602085015167ffffffffffffffff811115620003d157620003d062000164565b5b620003df87828801620002b5565b9350506040620003f2878288016200030f565b925050606062000405878288016200034a565b91505092959194509250565b600081519050919050565b7f4e487b7100000000000000000000000000000000000000000000000000000000600052602260045260246000fd5b600060028204905060018216806200046457607f821691505b6020821081036200047a57620004796200041c565b5b50919050565b60008190508160005260206000209050919050565b60006020601f8301049050919050565b600082821b905092915050565b600060088302620004e47fffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff82620004a5565b620004f08683620004a5565b95508019841693508086168417925050509392505050565b6000819050919050565b6000620005336200052d620005278462000326565b62000508565b62000326565b9050919050565b6000819050919050565b6200054f8362000512565b620005676200055e826200053a565b848454620004b2565b825550505050565b600090565b6200057e6200056f565b6200058b81848462000544565b505050565b5b81811015620005b357620005a760008262000574565b60018101905062000591565b5050565b601f8211156200060257620005cc8162000480565b620005d78462000495565b81016020851015620005e7578190505b620005ff620005f68562000495565b83018262000590565b50505b505050565b600082821c905092915050565b6000620006276000198460080262000607565b1980831691505092915050565b600062000642838362000614565b9150826002028217905092915050565b6200065d8262000411565b67ffffffffffffffff81111562000679576200067862000184565b5b6200068582546200044b565b62000692828285620005b7565b600060209050601f831160018114620006ca5760008415620006b5578287015190505b620006c1858262000634565b86555062000731565b601f198416620006da8662000480565b60005b828110156200070457848901518255600182019150602085019450602081019050620006dd565b8683101562000724578489015162000720601f89168262000614565b8355505b6001600288020188555050505b505050505050565b7f4e487b7100000000000000000000000000000000000000000000000000000000600052601160045260246000fd5b60008160011c9050919050565b6000808291508390505b6001851115620007c7578086048111156200079f576200079e62000739565b5b6001851615620007af5780820291505b8081029050620007bf8562000768565b94506200077f565b94509492505050565b600082620007e25760019050620008b5565b81620007f25760009050620008b5565b81600181146200080b576002811462000816576200084c565b6001915050620008b5565b60ff8411156200082b576200082a62000739565b5b8360020a91508482111562000845576200084462000739565b5b50620008b5565b5060208310610133831016604e8410600b8410161715620008865782820a90508381111562000880576200087f62000739565b5b620008b5565b62000895848484600162000775565b92509050818404811115620008af57620008ae62000739565b5b81810290505b9392505050565b6000620008c98262000326565b9150620008d68362000326565b9250620009057fffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff8484620007d0565b905092915050565b60006200091a8262000326565b9150620009278362000326565b9250828202620009378162000326565b9150828204841483151762000951576200095062000739565b5b5092915050565b620009638162000326565b82525050565b600060208201905062000980600083018462000958565b92915050565b61159880620009966000396000f3fe608060405234801561001057600080fd5b50600436106100a95760003560e01c806340c10f191161007157806340c10f191461016857806342966c681461019857806370a08231146101c857806395d89b41146101f8578063a9059cbb14610216578063dd62ed3e14610246576100a9565b806306fdde03146100ae578063095ea7b3146100cc57806318160ddd146100fc57806323b872dd1461011a578063313ce5671461014a575b600080fd5b6100b6610276565b6040516100c39190610ef8565b60405180910390f35b6100e660048036038101906100e19190610fb3565b610304565b6040516100f3919061100e565b60405180910390f35b610104610464565b6040516101119190611038565b60405180910390f35b610134600480360381019061012f9190611053565b61046a565b604051610141919061100e565b60405180910390f35b610152610839565b60405161015f91906110c2565b60405180910390f35b610182600480360381019061017d9190610fb3565b61084c565b60405161018f919061100e565b60405180910390f35b6101b260048036038101906101ad91906110dd565b61099b565b6040516101bf919061100e565b60405180910390f35b6101e260048036038101906101dd919061110a565b610afd565b6040516101ef9190611038565b60405180910390f35b610200610b46565b60405161020d9190610ef8565b60405180910390f35b610230600480360381019061022b9190610fb3565b610bd4565b60405161023d919061100e565b60405180910390f35b610260600480360381019061025b9190611137565b610de1565b60405161026d9190611038565b60405180910390f35b60008054610283906111a6565b80601f01602080910402602001604051908101604052809291908181526020018280546102af906111a6565b80156102fc5780601f106102d1576101008083540402835291602001916102fc565b820191906000526020600020905b8154815290600101906020018083116102df57829003601f168201915b505050505081565b60008073ffffffffffffffffffffffffffffffffffffffff168373ffffffffffffffffffffffffffffffffffffffff1603610374576040517f08c379a000000000000000000000000000000000000000000000000000000000815260040161036b90611223565b60405180910390fd5b81600560003373ffffffffffffffffffffffffffffffffffffffff1673ffffffffffffffffffffffffffffffffffffffff16815260200190815260200160002060008573ffffffffffffffffffffffffffffffffffffffff1673ffffffffffffffffffffffffffffffffffffffff168152602001908152602001600020819055508273ffffffffffffffffffffffffffffffffffffffff163373ffffffffffffffffffffffffffffffffffffffff167f8c5be1e5ebec7d5bd14f71427d1e84f3dd0314c0f7b2291e5b200ac8c7c3b925846040516104529190611038565b60405180910390a36001905092915050565b60035481565b60008073ffffffffffffffffffffffffffffffffffffffff168473ffffffffffffffffffffffffffffffffffffffff16036104da576040517f08c379a00000000000000000000000000000000000000000000000000000000081526004016104d19061128f565b60405180910390fd5b600073ffffffffffffffffffffffffffffffffffffffff168373ffffffffffffffffffffffffffffffffffffffff1603610549576040517f08c379a0000000000000000000000000000000000000000000000000000000008152600401610540906112fb565b60405180910390fd5b81600460008673ffffffffffffffffffffffffffffffffffffffff1673ffffffffffffffffffffffffffffffffffffffff1681526020019081526020016000205410156105cb576040517f08c379a00000000000000000000000000000000000000000000000000000000081526004016105c290611367565b60405180910390fd5b81600560008673ffffffffffffffffffffffffffffffffffffffff1673ffffffffffffffffffffffffffffffffffffffff16815260200190815260200160002060003373ffffffffffffffffffffffffffffffffffffffff1673ffffffffffffffffffffffffffffffffffffffff16815260200190815260200160002054101561068a576040517f08c379a0000000000000000000000000000000000000000000000000000000008152600401610681906113d3565b60405180910390fd5b81600460008673ffffffffffffffffffffffffffffffffffffffff1673ffffffffffffffffffffffffffffffffffffffff16815260200190815260200160002060008282546106d99190611422565b9250508190555081600460008573ffffffffffffffffffffffffffffffffffffffff1673ffffffffffffffffffffffffffffffffffffffff168152602001908152602001600020600082825461072f9190611456565b9250508190555081600560008673ffffffffffffffffffffffffffffffffffffffff1673ffffffffffffffffffffffffffffffffffffffff16815260200190815260200160002060003373ffffffffffffffffffffffffffffffffffffffff1673ffffffffffffffffffffffffffffffffffffffff16815260200190815260200160002060008282546107c29190611422565b925050819055508273ffffffffffffffffffffffffffffffffffffffff168473ffffffffffffffffffffffffffffffffffffffff167fddf252ad1be2c89b69c2b068fc378daa952ba7f163c4a11628f55a4df523b3ef846040516108269190611038565b60405180910390a3600190509392505050565b600260009054906101000a900460ff1681565b60008073ffffffffffffffffffffffffffffffffffffffff168373ffffffffffffffffffffffffffffffffffffffff16036108bc576040517f08c379a00000000000000000000000000000000000000000000000000000000081526004016108b3906114d6565b60405180910390fd5b81600360008282546108ce9190611456565b9250508190555081600460008573ffffffffffffffffffffffffffffffffffffffff1673ffffffffffffffffffffffffffffffffffffffff16815260200190815260200160002060008282546109249190611456565b925050819055508273ffffffffffffffffffffffffffffffffffffffff16600073ffffffffffffffffffffffffffffffffffffffff167fddf252ad1be2c89b69c2b068fc378daa952ba7f163c4a11628f55a4df523b3ef846040516109899190611038565b60405180910390a36001905092915050565b600081600460003373ffffffffffffffffffffffffffffffffffffffff1673ffffffffffffffffffffffffffffffffffffffff168152602001908152602001600020541015610a1f576040517f08c379a0000000000000000000000000000000000000000000000000000000008152600401610a1690611542565b60405180910390fd5b8160036000828254610a319190611422565b9250508190555081600460003373ffffffffffffffffffffffffffffffffffffffff1673ffffffffffffffffffffffffffffffffffffffff1681526020019081526020016000206000828254610a879190611422565b92505081905550600073ffffffffffffffffffffffffffffffffffffffff163373ffffffffffffffffffffffffffffffffffffffff167fddf252ad1be2c89b69c2b068fc378daa952ba7f163c4a11628f55a4df523b3ef84604051610aec9190611038565b60405180910390a360019050919050565b6000600460008373ffffffffffffffffffffffffffffffffffffffff1673ffffffffffffffffffffffffffffffffffffffff168152602001908152602001600020549050919050565b60018054610b53906111a6565b80601f0160208091040260200160405190810160405280929190818152602001828054610b7f906111a6565b8015610bcc5780601f10610ba157610100808354040283529160200191610bcc565b820191906000526020600020905b815481529060010190602001808311610baf57829003601f168201915b505050505081565b60008073ffffffffffffffffffffffffffffffffffffffff168373ffffffffffffffffffffffffffffffffffffffff1603610c44576040517f08c379a0000000000000000000000000000000000000000000000000000000008152600401610c3b906112fb565b60405180910390fd5b81600460003373ffffffffffffffffffffffffffffffffffffffff1673ffffffffffffffffffffffffffffffffffffffff168152602001908152602001600020541015610cc6576040517f08c379a0000000000000000000000000000000000000000000000000000000008152600401610cbd90611367565b60405180910390fd5b81600460003373ffffffffffffffffffffffffffffffffffffffff1673ffffffffffffffffffffffffffffffffffffffff1681526020019081526020016000206000828254610d159190611422565b9250508190555081600460008573ffffffffffffffffffffffffffffffffffffffff1673ffffffffffffffffffffffffffffffffffffffff1681526020019081526020016000206000828254610d6b9190611456565b925050819055508273ffffffffffffffffffffffffffffffffffffffff163373ffffffffffffffffffffffffffffffffffffffff167fddf252ad1be2c89b69c2b068fc378daa952ba7f163c4a11628f55a4df523b3ef84604051610dcf9190611038565b60405180910390a36001905092915050565b6000600560008473ffffffffffffffffffffffffffffffffffffffff1673ffffffffffffffffffffffffffffffffffffffff16815260200190815260200160002060008373ffffffffffffffffffffffffffffffffffffffff1673ffffffffffffffffffffffffffffffffffffffff16815260200190815260200160002054905092915050565b600081519050919050565b600082825260208201905092915050565b60005b83811015610ea2578082015181840152602081019050610e87565b60008484015250505050565b6000601f19601f8301169050919050565b6000610eca82610e68565b610ed48185610e73565b9350610ee4818560208601610e84565b610eed81610eae565b840191505092915050565b60006020820190508181036000830152610f128184610ebf565b905092915050565b600080fd5b600073ffffffffffffffffffffffffffffffffffffffff82169050919050565b6000610f4a82610f1f565b9050919050565b610f5a81610f3f565b8114610f6557600080fd5b50565b600081359050610f7781610f51565b92915050565b6000819050919050565b610f9081610f7d565b8114610f9b57600080fd5b50565b600081359050610fad81610f87565b92915050565b60008060408385031215610fca57610fc9610f1a565b5b6000610fd885828601610f68565b9250506020610fe985828601610f9e565b9150509250929050565b60008115159050919050565b61100881610ff3565b82525050565b60006020820190506110236000830184610fff565b92915050565b61103281610f7d565b82525050565b600060208201905061104d6000830184611029565b92915050565b60008060006060848603121561106c5761106b610f1a565b5b600061107a86828701610f68565b935050602061108b86828701610f68565b925050604061109c86828701610f9e565b9150509250925092565b600060ff82169050919050565b6110bc816110a6565b82525050565b60006020820190506110d760008301846110b3565b92915050565b6000602082840312156110f3576110f2610f1a565b5b600061110184828501610f9e565b91505092915050565b6000602082840312156111205761111f610f1a565b5b600061112e84828501610f68565b91505092915050565b6000806040838503121561114e5761114d610f1a565b5b600061115c85828601610f68565b925050602061116d85828601610f68565b9150509250929050565b7f4e487b7100000000000000000000000000000000000000000000000000000000600052602260045260246000fd5b600060028204905060018216806111be57607f821691505b6020821081036111d1576111d0611177565b5b50919050565b7f417070726f766520746f207a65726f2061646472657373000000000000000000600082015250565b600061120d601783610e73565b9150611218826111d7565b602082019050919050565b6000602082019050818103600083015261123c81611200565b9050919050565b7f5472616e736665722066726f6d207a65726f2061646472657373000000000000600082015250565b6000611279601a83610e73565b915061128482611243565b602082019050919050565b600060208201905081810360008301526112a88161126c565b9050919050565b7f5472616e7366657220746f207a65726f20616464726573730000000000000000600082015250565b60006112e5601883610e73565b91506112f0826112af565b602082019050919050565b60006020820190508181036000830152611314816112d8565b9050919050565b7f496e73756666696369656e742062616c616e6365000000000000000000000000600082015250565b6000611351601483610e73565b915061135c8261131b565b602082019050919050565b6000602082019050818103600083015261138081611344565b9050919050565b7f416c6c6f77616e63652065786365656465640000000000000000000000000000600082015250565b60006113bd601283610e73565b91506113c882611387565b602082019050919050565b600060208201905081810360008301526113ec816113b0565b9050919050565b7f4e487b7100000000000000000000000000000000000000000000000000000000600052601160045260246000fd5b600061142d82610f7d565b915061143883610f7d565b92508282039050818111156114505761144f6113f3565b5b92915050565b600061146182610f7d565b915061146c83610f7d565b9250828201905080821115611484576114836113f3565b5b92915050565b7f4d696e7420746f207a65726f2061646472657373000000000000000000000000600082015250565b60006114c0601483610e73565b91506114cb8261148a565b602082019050919050565b600060208201905081810360008301526114ef816114b3565b9050919050565b7f496e73756666696369656e742062616c616e636520746f206275726e00000000600082015250565b600061152c601c83610e73565b9150611537826114f6565b602082019050919050565b6000602082019050818103600083015261155b8161151f565b905091905056fea264697066735822122054a8f8277b80f6abf9833f89259a466f9e5e61ffdecfd8b0ea630286c749e3d564736f6c63430008120033"
